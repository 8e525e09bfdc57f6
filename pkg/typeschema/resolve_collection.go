package typeschema

import "fmt"

// dictionaryResolver converts map-like types. Key handling depends on the
// configured DictionaryKeyMode; the value schema is computed recursively and
// placed under additionalProperties.
type dictionaryResolver struct{}

func (dictionaryResolver) name() string { return "dictionary" }

func (dictionaryResolver) resolve(c *Converter, td TypeDescriptor) (resolution, error) {
	if td.Kind() != KindMap {
		return unhandled, nil
	}
	frag := &Fragment{typ: "object"}
	if key, ok := td.Key(); ok && !stringLikeKey(key) {
		switch c.ctx.opts.DictionaryKeyMode {
		case DictionaryKeySkip:
			return handledWith(&Fragment{}), nil
		case DictionaryKeyStrict:
			return faultWith(fmt.Sprintf("unsupported dictionary key type %s", keyName(key))), nil
		case DictionaryKeyLoose:
			frag.comment = fmt.Sprintf("dictionary key type %s is not a string", keyName(key))
		case DictionaryKeySilent:
		}
	}
	value, ok := td.Elem()
	if !ok {
		return faultWith(fmt.Sprintf("dictionary type %s has no resolvable value type", td.Name())), nil
	}
	valueFrag, err := c.convertType(value)
	if err != nil {
		return resolution{}, err
	}
	frag.additional = valueFrag
	return handledWith(frag), nil
}

// stringLikeKey accepts plain strings and string-backed enums as object keys.
func stringLikeKey(key TypeDescriptor) bool {
	switch key.Kind() {
	case KindString:
		return true
	case KindEnum:
		underlying, ok := key.Elem()
		return ok && underlying.Kind() == KindString
	}
	return false
}

func keyName(key TypeDescriptor) string {
	if name := key.Name(); name != "" {
		return name
	}
	return key.Kind().String()
}

// sequenceResolver converts slice and array types; fixed-length arrays carry
// matching minItems/maxItems constraints.
type sequenceResolver struct{}

func (sequenceResolver) name() string { return "sequence" }

func (sequenceResolver) resolve(c *Converter, td TypeDescriptor) (resolution, error) {
	if td.Kind() != KindSlice && td.Kind() != KindArray {
		return unhandled, nil
	}
	elem, ok := td.Elem()
	if !ok {
		return faultWith(fmt.Sprintf("sequence type %s has no resolvable element", td.Name())), nil
	}
	elemFrag, err := c.convertType(elem)
	if err != nil {
		return resolution{}, err
	}
	frag := &Fragment{typ: "array", items: elemFrag}
	if td.Kind() == KindArray {
		if length := td.Len(); length >= 0 {
			frag.minItems = &length
			frag.maxItems = &length
		}
	}
	return handledWith(frag), nil
}
