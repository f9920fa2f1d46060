package dialect

import "fmt"

// Feature is an independently toggleable language capability in the
// formatter's own vocabulary. FeatureUnknown tags flags whose manifest name
// has no translation; they keep their literal spelling instead.
type Feature uint8

const (
	FeatureUnknown Feature = iota
	Pipes
	NamedArgs
	StringInterp
	PatternGuards
	TrailingCommas
	AsyncBlocks
	ImplicitReturns
	RawPointers

	featureCount
)

// Token returns the parser-side spelling of the feature.
func (f Feature) Token() string {
	switch f {
	case Pipes:
		return "pipes"
	case NamedArgs:
		return "named-args"
	case StringInterp:
		return "string-interp"
	case PatternGuards:
		return "pattern-guards"
	case TrailingCommas:
		return "trailing-commas"
	case AsyncBlocks:
		return "async"
	case ImplicitReturns:
		return "implicit-ret"
	case RawPointers:
		return "unsafe-ptr"
	default:
		return "unknown"
	}
}

func (f Feature) GoString() string {
	return fmt.Sprintf("Feature(%s)", f.Token())
}

// featureNames maps manifest flag spellings to parser features. The two
// vocabularies are defined independently; this table is the only bridge.
var featureNames = map[string]Feature{
	"pipe-operators":       Pipes,
	"named-arguments":      NamedArgs,
	"string-interpolation": StringInterp,
	"pattern-guards":       PatternGuards,
	"trailing-commas":      TrailingCommas,
	"async-blocks":         AsyncBlocks,
	"implicit-returns":     ImplicitReturns,
	"raw-pointers":         RawPointers,
}
