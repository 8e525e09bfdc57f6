package typeschema

// resolutionState is the structural outcome of one resolver attempt.
// Shape mismatches are notHandled, never errors; faults degrade a single
// subtree to an unsupported marker while the rest of the conversion proceeds.
type resolutionState int

const (
	notHandled resolutionState = iota
	handled
	faulted
)

type resolution struct {
	state    resolutionState
	fragment *Fragment
	message  string
}

func handledWith(f *Fragment) resolution {
	return resolution{state: handled, fragment: f}
}

func faultWith(message string) resolution {
	return resolution{state: faulted, fragment: unsupportedFragment(message), message: message}
}

var unhandled = resolution{state: notHandled}

// resolver recognizes one category of type shape. Resolvers are stateless;
// all traversal state lives in the Converter they are handed.
type resolver interface {
	name() string
	resolve(c *Converter, td TypeDescriptor) (resolution, error)
}

// pipeline is the fixed resolver order. Earlier resolvers intercept special
// cases before the composite object fallback claims the rest; the fallback
// stage lives in the Converter because it owns definition registration.
var pipeline = []resolver{
	nullableResolver{},
	overrideResolver{},
	formatResolver{},
	enumResolver{},
	primitiveResolver{},
	dictionaryResolver{},
	sequenceResolver{},
}
