package syntax

// NodeKind identifies a grammar node type.
//
// The set is closed: the dispatcher's handler table is validated against
// TopLevelKinds at start-up, so a kind added here without a handler is a
// start-up panic rather than a runtime lookup miss.
type NodeKind uint8

const (
	KindFile NodeKind = iota // Top-level source (file or string)

	// Undated directives
	KindComment
	KindOption   // option "name" "value"
	KindPlugin   // plugin "module"
	KindInclude  // include "glob"
	KindPushtag  // pushtag #tag
	KindPoptag   // poptag #tag
	KindPushmeta // pushmeta key: value
	KindPopmeta  // popmeta key:

	// Dated directives
	KindTransaction
	KindOpen
	KindClose
	KindCommodity
	KindBalance
	KindPrice
	KindNote
	KindDocument
	KindEvent
	KindCustom

	// Unparseable region; its handler always signals a syntax problem
	KindError

	// Leaves, consumed by parent directives through field access
	KindDate
	KindFlag
	KindAccount
	KindCurrency
	KindString
	KindNumber
	KindAmount
	KindTag
	KindLink
	KindKey
	KindKeyValue
	KindPosting

	kindCount
)

var kindNames = [...]string{
	KindFile:        "file",
	KindComment:     "comment",
	KindOption:      "option",
	KindPlugin:      "plugin",
	KindInclude:     "include",
	KindPushtag:     "pushtag",
	KindPoptag:      "poptag",
	KindPushmeta:    "pushmeta",
	KindPopmeta:     "popmeta",
	KindTransaction: "transaction",
	KindOpen:        "open",
	KindClose:       "close",
	KindCommodity:   "commodity",
	KindBalance:     "balance",
	KindPrice:       "price",
	KindNote:        "note",
	KindDocument:    "document",
	KindEvent:       "event",
	KindCustom:      "custom",
	KindError:       "ERROR",
	KindDate:        "date",
	KindFlag:        "flag",
	KindAccount:     "account",
	KindCurrency:    "currency",
	KindString:      "string",
	KindNumber:      "number",
	KindAmount:      "amount",
	KindTag:         "tag",
	KindLink:        "link",
	KindKey:         "key",
	KindKeyValue:    "key_value",
	KindPosting:     "posting",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Named reports whether the kind is semantically meaningful. Every kind
// in the closed set is named; the zero-width punctuation tokens the
// grammar consumes internally never surface as nodes.
func (k NodeKind) Named() bool { return k < kindCount }

// TopLevelKinds enumerates the kinds that may appear as direct children
// of a file node. The dispatcher's handler table must cover all of them.
func TopLevelKinds() []NodeKind {
	return []NodeKind{
		KindComment,
		KindOption,
		KindPlugin,
		KindInclude,
		KindPushtag,
		KindPoptag,
		KindPushmeta,
		KindPopmeta,
		KindTransaction,
		KindOpen,
		KindClose,
		KindCommodity,
		KindBalance,
		KindPrice,
		KindNote,
		KindDocument,
		KindEvent,
		KindCustom,
		KindError,
	}
}
