package typeschema

import (
	"github.com/nobl9/govy/pkg/govy"
	"github.com/nobl9/govy/pkg/rules"
	"github.com/pkg/errors"
)

// DictionaryKeyMode controls what happens when a dictionary key type is not
// a string.
type DictionaryKeyMode int

const (
	// DictionaryKeyLoose emits a warning comment and proceeds.
	DictionaryKeyLoose DictionaryKeyMode = iota
	// DictionaryKeyStrict degrades the dictionary to an unsupported marker.
	DictionaryKeyStrict
	// DictionaryKeySilent proceeds without a comment.
	DictionaryKeySilent
	// DictionaryKeySkip produces an empty fragment for the dictionary.
	DictionaryKeySkip
)

// EnumMode controls the representation of enum types.
type EnumMode int

const (
	// EnumModeString emits enum members as kebab-cased string values.
	EnumModeString EnumMode = iota
	// EnumModeUnderlying substitutes the schema of the underlying primitive.
	EnumModeUnderlying
)

// NumberMode controls the representation of numeric primitives.
type NumberMode int

const (
	// NumberModeStrict registers one shared definition per primitive,
	// carrying the exact numeric range, and references it.
	NumberModeStrict NumberMode = iota
	// NumberModeStrictInline inlines the exact numeric range at each site.
	NumberModeStrictInline
	// NumberModeNative emits bare JSON type keywords without bounds.
	NumberModeNative
)

// DefaultMaxDepth bounds the recursion of a conversion unless overridden.
const DefaultMaxDepth = 64

// ConversionOptions carries every behavioral toggle of a conversion.
// The options are read-only during traversal; create a fresh value per
// conversion rather than mutating a shared one.
type ConversionOptions struct {
	// Accessibility is the OR of member accessibility levels to emit.
	Accessibility Accessibility
	// TraverseBaseTypes folds members of embedded (base) types into the
	// owning object.
	TraverseBaseTypes bool
	// IncludeInterfaces registers a definition for each interface a
	// converted type implements, accumulating the type as a oneOf variant.
	IncludeInterfaces bool
	DictionaryKeyMode DictionaryKeyMode
	EnumMode          EnumMode
	NumberMode        NumberMode
	// MaxDepth is the maximum nesting of type visits. Exceeding it fails
	// the whole conversion.
	MaxDepth int
	// SchemaID is emitted as the document's $id when non-empty.
	SchemaID string
	// Docs supplies doc-comment text merged into the output.
	// Nil disables the merge.
	Docs DocProvider
}

// DefaultOptions returns the options used when callers have no opinion:
// public members only, base traversal on, loose dictionary keys, string
// enums and inline numeric bounds.
func DefaultOptions() ConversionOptions {
	return ConversionOptions{
		Accessibility:     AccessPublic,
		TraverseBaseTypes: true,
		DictionaryKeyMode: DictionaryKeyLoose,
		EnumMode:          EnumModeString,
		NumberMode:        NumberModeStrictInline,
		MaxDepth:          DefaultMaxDepth,
	}
}

var optionsValidator = govy.New(
	govy.For(func(o ConversionOptions) int { return o.MaxDepth }).
		WithName("maxDepth").
		Rules(rules.GT(0)),
	govy.For(func(o ConversionOptions) Accessibility { return o.Accessibility }).
		WithName("accessibility").
		Rules(govy.NewRule(func(a Accessibility) error {
			if a == 0 {
				return errors.New("at least one accessibility level must be set")
			}
			return nil
		})),
	govy.For(func(o ConversionOptions) DictionaryKeyMode { return o.DictionaryKeyMode }).
		WithName("dictionaryKeyMode").
		Rules(rules.OneOf(
			DictionaryKeyLoose,
			DictionaryKeyStrict,
			DictionaryKeySilent,
			DictionaryKeySkip,
		)),
	govy.For(func(o ConversionOptions) EnumMode { return o.EnumMode }).
		WithName("enumMode").
		Rules(rules.OneOf(EnumModeString, EnumModeUnderlying)),
	govy.For(func(o ConversionOptions) NumberMode { return o.NumberMode }).
		WithName("numberMode").
		Rules(rules.OneOf(NumberModeStrict, NumberModeStrictInline, NumberModeNative)),
).WithName("ConversionOptions")

func (o ConversionOptions) validate() error {
	if err := optionsValidator.Validate(o); err != nil {
		return errors.Wrap(err, "invalid conversion options")
	}
	return nil
}
