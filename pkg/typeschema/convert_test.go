package typeschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPkg = "example.com/cards"

func TestConvert_Primitives(t *testing.T) {
	tests := map[TypeKind][2]string{
		KindInt8:   {"-128", "127"},
		KindInt16:  {"-32768", "32767"},
		KindInt32:  {"-2147483648", "2147483647"},
		KindInt64:  {"-9223372036854775808", "9223372036854775807"},
		KindInt:    {"-9223372036854775808", "9223372036854775807"},
		KindUint8:  {"0", "255"},
		KindUint16: {"0", "65535"},
		KindUint32: {"0", "4294967295"},
		KindUint64: {"0", "18446744073709551615"},
		KindUint:   {"0", "18446744073709551615"},
	}
	for kind, bounds := range tests {
		t.Run(kind.String(), func(t *testing.T) {
			doc, err := Convert(primitiveStub(kind), DefaultOptions())
			require.NoError(t, err)
			fields := marshalToRawFields(t, doc)
			assert.Equal(t, `"integer"`, string(fields["type"]))
			// Bounds must survive as exact literals, not rounded floats.
			assert.Equal(t, bounds[0], string(fields["minimum"]))
			assert.Equal(t, bounds[1], string(fields["maximum"]))
		})
	}
}

func TestConvert_FloatBoundsAreSaturated(t *testing.T) {
	for _, kind := range []TypeKind{KindFloat32, KindFloat64} {
		doc, err := Convert(primitiveStub(kind), DefaultOptions())
		require.NoError(t, err)
		fields := marshalToRawFields(t, doc)
		assert.Equal(t, `"number"`, string(fields["type"]))
		assert.Equal(t, "-7.922816251426434e+28", string(fields["minimum"]))
		assert.Equal(t, "7.922816251426434e+28", string(fields["maximum"]))
	}
}

func TestConvert_BoolAndString(t *testing.T) {
	doc, err := Convert(primitiveStub(KindBool), DefaultOptions())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "boolean",
		"$comment": "bool"
	}`, mustMarshal(t, doc))

	doc, err = Convert(primitiveStub(KindString), DefaultOptions())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "string",
		"$comment": "string"
	}`, mustMarshal(t, doc))
}

func TestConvert_Struct(t *testing.T) {
	player := structStub(testPkg, "Player",
		memberStub("Name", primitiveStub(KindString)),
		memberStub("Age", primitiveStub(KindInt)),
		&stubMember{name: "Nickname", typ: primitiveStub(KindString), nullable: true},
	)

	doc, err := Convert(player, DefaultOptions())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"name": {"type": "string", "$comment": "string"},
			"age": {
				"type": "integer",
				"$comment": "int",
				"minimum": -9223372036854775808,
				"maximum": 9223372036854775807
			},
			"nickname": {
				"oneOf": [
					{"type": "string", "$comment": "string"},
					{"type": "null"}
				]
			}
		},
		"required": ["name", "age"]
	}`, mustMarshal(t, doc))
}

func TestConvert_SharedDefinition(t *testing.T) {
	card := structStub(testPkg, "Card",
		memberStub("Face", primitiveStub(KindString)),
	)
	hand := structStub(testPkg, "Hand",
		memberStub("First", card),
		memberStub("Second", card),
	)

	doc, err := Convert(hand, DefaultOptions())
	require.NoError(t, err)

	// Both members reference the single Card definition.
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"first": {"$ref": "#/$defs/Card"},
			"second": {"$ref": "#/$defs/Card"}
		},
		"required": ["first", "second"],
		"$defs": {
			"Card": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"face": {"type": "string", "$comment": "string"}
				},
				"required": ["face"]
			}
		}
	}`, mustMarshal(t, doc))
}

func TestConvert_SelfReferentialType(t *testing.T) {
	player := structStub(testPkg, "Player")
	buddy := &stubType{kind: KindPointer, elem: player}
	player.members = []MemberDescriptor{
		&stubMember{name: "Buddy", typ: buddy, nullable: true},
	}

	doc, err := Convert(player, DefaultOptions())
	require.NoError(t, err)

	// The cycle resolves to a reference; the root definition is kept in
	// $defs because the graph references it.
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"buddy": {
				"oneOf": [
					{"$ref": "#/$defs/Player"},
					{"type": "null"}
				]
			}
		},
		"$defs": {
			"Player": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"buddy": {
						"oneOf": [
							{"$ref": "#/$defs/Player"},
							{"type": "null"}
						]
					}
				}
			}
		}
	}`, mustMarshal(t, doc))
}

func TestConvert_RootNotReferencedIsInlinedOnly(t *testing.T) {
	doc, err := Convert(structStub(testPkg, "Lonely",
		memberStub("Name", primitiveStub(KindString)),
	), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, doc.Definitions)
}

func TestConvert_DepthExceeded(t *testing.T) {
	c := structStub(testPkg, "C", memberStub("Value", primitiveStub(KindString)))
	b := structStub(testPkg, "B", memberStub("C", c))
	a := structStub(testPkg, "A", memberStub("B", b))

	opts := DefaultOptions()
	opts.MaxDepth = 2
	_, err := Convert(a, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum recursion depth 2 exceeded")
}

func TestConvert_NilRoot(t *testing.T) {
	_, err := Convert(nil, DefaultOptions())
	require.Error(t, err)
}

func TestConvert_UnresolvedRoot(t *testing.T) {
	_, err := Convert(&stubType{name: "Ghost", unresolved: true}, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestConvert_UnresolvedMemberDegrades(t *testing.T) {
	owner := structStub(testPkg, "Owner",
		memberStub("Ghost", &stubType{name: "Ghost", unresolved: true}),
	)
	doc, err := Convert(owner, DefaultOptions())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"ghost": {"$unsupportedObject": "type Ghost could not be resolved"}
		},
		"required": ["ghost"]
	}`, mustMarshal(t, doc))
}

func TestConvert_DictionaryKeyModes(t *testing.T) {
	newDict := func() *stubType {
		return &stubType{
			kind: KindMap,
			key:  primitiveStub(KindInt),
			elem: primitiveStub(KindString),
		}
	}
	stringValue := `{"type": "string", "$comment": "string"}`

	t.Run("loose warns and proceeds", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DictionaryKeyMode = DictionaryKeyLoose
		doc, err := Convert(newDict(), opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "object",
			"$comment": "dictionary key type int is not a string",
			"additionalProperties": `+stringValue+`
		}`, mustMarshal(t, doc))
	})
	t.Run("strict degrades", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DictionaryKeyMode = DictionaryKeyStrict
		doc, err := Convert(newDict(), opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$unsupportedObject": "unsupported dictionary key type int"
		}`, mustMarshal(t, doc))
	})
	t.Run("silent proceeds without comment", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DictionaryKeyMode = DictionaryKeySilent
		doc, err := Convert(newDict(), opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "object",
			"additionalProperties": `+stringValue+`
		}`, mustMarshal(t, doc))
	})
	t.Run("skip emits an empty schema", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DictionaryKeyMode = DictionaryKeySkip
		doc, err := Convert(newDict(), opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema"
		}`, mustMarshal(t, doc))
	})
	t.Run("string keys need no mode", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DictionaryKeyMode = DictionaryKeyStrict
		dict := newDict()
		dict.key = primitiveStub(KindString)
		doc, err := Convert(dict, opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "object",
			"additionalProperties": `+stringValue+`
		}`, mustMarshal(t, doc))
	})
}

func TestConvert_Sequences(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		doc, err := Convert(&stubType{
			kind: KindSlice,
			elem: primitiveStub(KindString),
		}, DefaultOptions())
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "array",
			"items": {"type": "string", "$comment": "string"}
		}`, mustMarshal(t, doc))
	})
	t.Run("fixed-length array", func(t *testing.T) {
		doc, err := Convert(&stubType{
			kind:   KindArray,
			elem:   primitiveStub(KindBool),
			length: 4,
		}, DefaultOptions())
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "array",
			"minItems": 4,
			"maxItems": 4,
			"items": {"type": "boolean", "$comment": "bool"}
		}`, mustMarshal(t, doc))
	})
}

func TestConvert_Enum(t *testing.T) {
	rank := &stubType{
		name: "Rank",
		pkg:  testPkg,
		kind: KindEnum,
		elem: primitiveStub(KindString),
		enumMembers: []EnumMember{
			{Name: "None", Value: "NotFaceCard"},
			{Name: "Jack"},
			{Name: "Queen"},
			{Name: "Hidden", Ignored: true},
		},
	}

	t.Run("string mode", func(t *testing.T) {
		doc, err := Convert(rank, DefaultOptions())
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "string",
			"$comment": "Rank",
			"enum": ["NotFaceCard", "jack", "queen"]
		}`, mustMarshal(t, doc))
	})
	t.Run("underlying mode", func(t *testing.T) {
		opts := DefaultOptions()
		opts.EnumMode = EnumModeUnderlying
		doc, err := Convert(rank, opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "string",
			"$comment": "string"
		}`, mustMarshal(t, doc))
	})
}

func TestConvert_AbstractType(t *testing.T) {
	trophy := structStub(testPkg, "Trophy", memberStub("Place", primitiveStub(KindString)))
	voucher := structStub(testPkg, "Voucher", memberStub("Amount", primitiveStub(KindString)))
	prize := &stubType{
		name:     "Prize",
		pkg:      testPkg,
		kind:     KindInterface,
		abstract: true,
		subtypes: []TypeDescriptor{trophy, voucher},
	}

	doc, err := Convert(prize, DefaultOptions())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"oneOf": [
			{"$ref": "#/$defs/Trophy"},
			{"$ref": "#/$defs/Voucher"}
		],
		"$defs": {
			"Trophy": {
				"type": "object",
				"additionalProperties": false,
				"properties": {"place": {"type": "string", "$comment": "string"}},
				"required": ["place"]
			},
			"Voucher": {
				"type": "object",
				"additionalProperties": false,
				"properties": {"amount": {"type": "string", "$comment": "string"}},
				"required": ["amount"]
			}
		}
	}`, mustMarshal(t, doc))
}

func TestConvert_AbstractTypeWithoutSubtypes(t *testing.T) {
	doc, err := Convert(&stubType{
		name:     "Prize",
		pkg:      testPkg,
		kind:     KindInterface,
		abstract: true,
	}, DefaultOptions())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$unsupportedObject": "no concrete subtypes known for abstract type example.com/cards.Prize"
	}`, mustMarshal(t, doc))
}

func TestConvert_IncludeInterfaces(t *testing.T) {
	prize := &stubType{
		name:     "Prize",
		pkg:      testPkg,
		kind:     KindInterface,
		abstract: true,
	}
	trophy := structStub(testPkg, "Trophy", memberStub("Place", primitiveStub(KindString)))
	trophy.interfaces = []TypeDescriptor{prize}

	opts := DefaultOptions()
	opts.IncludeInterfaces = true
	doc, err := Convert(trophy, opts)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"properties": {"place": {"type": "string", "$comment": "string"}},
		"required": ["place"],
		"$defs": {
			"Prize": {"oneOf": [{"$ref": "#/$defs/Trophy"}]},
			"Trophy": {
				"type": "object",
				"additionalProperties": false,
				"properties": {"place": {"type": "string", "$comment": "string"}},
				"required": ["place"]
			}
		}
	}`, mustMarshal(t, doc))
}

func TestConvert_GenericInstantiation(t *testing.T) {
	pair := structStub(testPkg, "Pair[int]",
		memberStub("First", primitiveStub(KindInt)),
		memberStub("Second", primitiveStub(KindInt)),
	)
	pair.genericArgs = []TypeDescriptor{primitiveStub(KindInt)}

	opts := DefaultOptions()
	opts.NumberMode = NumberModeNative
	doc, err := Convert(pair, opts)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"first": {"type": "integer", "$comment": "int"},
			"second": {"type": "integer", "$comment": "int"}
		},
		"required": ["first", "second"],
		"$defs": {
			"Pair": {
				"$comment": "open generic type Pair",
				"oneOf": [{"$ref": "#/$defs/Pair[int]"}]
			},
			"Pair[int]": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"first": {"type": "integer", "$comment": "int"},
					"second": {"type": "integer", "$comment": "int"}
				},
				"required": ["first", "second"]
			}
		}
	}`, mustMarshal(t, doc))
}

func TestConvert_DefinitionNameCollision(t *testing.T) {
	item := structStub(testPkg, "Item", memberStub("Name", primitiveStub(KindString)))
	otherItem := structStub("example.com/other", "Item", memberStub("Code", primitiveStub(KindString)))
	box := structStub(testPkg, "Box",
		memberStub("A", item),
		memberStub("B", item),
		memberStub("C", otherItem),
		memberStub("D", otherItem),
	)

	doc, err := Convert(box, DefaultOptions())
	require.NoError(t, err)

	data := mustMarshal(t, doc)
	// The first Item claims the simple name; the colliding one falls back
	// to its qualified name, escaped for use in a JSON pointer.
	assert.Contains(t, data, `"$ref":"#/$defs/Item"`)
	assert.Contains(t, data, `"$ref":"#/$defs/example.com~1other.Item"`)
	require.Contains(t, doc.Definitions, "Item")
	require.Contains(t, doc.Definitions, "example.com/other.Item")
}

func TestConvert_NumberModes(t *testing.T) {
	score := structStub(testPkg, "Score",
		memberStub("Points", primitiveStub(KindInt)),
		memberStub("Ratio", primitiveStub(KindFloat64)),
	)

	t.Run("strict shares definitions", func(t *testing.T) {
		opts := DefaultOptions()
		opts.NumberMode = NumberModeStrict
		doc, err := Convert(score, opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"points": {"$ref": "#/$defs/int"},
				"ratio": {"$ref": "#/$defs/float64"}
			},
			"required": ["points", "ratio"],
			"$defs": {
				"int": {
					"type": "integer",
					"$comment": "int",
					"minimum": -9223372036854775808,
					"maximum": 9223372036854775807
				},
				"float64": {
					"type": "number",
					"$comment": "float64",
					"minimum": -7.922816251426434e+28,
					"maximum": 7.922816251426434e+28
				}
			}
		}`, mustMarshal(t, doc))
	})
	t.Run("native drops bounds", func(t *testing.T) {
		opts := DefaultOptions()
		opts.NumberMode = NumberModeNative
		doc, err := Convert(score, opts)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"points": {"type": "integer", "$comment": "int"},
				"ratio": {"type": "number", "$comment": "float64"}
			},
			"required": ["points", "ratio"]
		}`, mustMarshal(t, doc))
	})
}

func TestConvert_SharedDefinitionNameIsReserved(t *testing.T) {
	// A user type whose simple name matches a shared numeric definition
	// must not overwrite it; the type falls back to its qualified name.
	clash := structStub(testPkg, "int", memberStub("Face", primitiveStub(KindString)))
	wrapper := structStub(testPkg, "Wrapper",
		memberStub("Count", primitiveStub(KindInt)),
		memberStub("Clash", clash),
	)
	opts := DefaultOptions()
	opts.NumberMode = NumberModeStrict
	doc, err := Convert(wrapper, opts)
	require.NoError(t, err)

	data := mustMarshal(t, doc)
	assert.Contains(t, data, `"count":{"$ref":"#/$defs/int"}`)
	assert.Contains(t, data, `"clash":{"$ref":"#/$defs/example.com~1cards.int"}`)
	require.Contains(t, doc.Definitions, "int")
	require.Contains(t, doc.Definitions, "example.com/cards.int")

	shared, err := json.Marshal(doc.Definitions["int"])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "integer",
		"$comment": "int",
		"minimum": -9223372036854775808,
		"maximum": 9223372036854775807
	}`, string(shared))
}

func TestConvert_Deterministic(t *testing.T) {
	build := func() string {
		t.Helper()
		card := structStub(testPkg, "Card", memberStub("Face", primitiveStub(KindString)))
		game := structStub(testPkg, "Game",
			memberStub("Deck", &stubType{kind: KindSlice, elem: card}),
			memberStub("Discard", &stubType{kind: KindSlice, elem: card}),
			memberStub("Turn", primitiveStub(KindInt)),
		)
		doc, err := Convert(game, DefaultOptions())
		require.NoError(t, err)
		return mustMarshal(t, doc)
	}
	first := build()
	second := build()
	assert.Equal(t, first, second)
}

func TestConverter_SharesDefinitionsAcrossRoots(t *testing.T) {
	card := structStub(testPkg, "Card", memberStub("Face", primitiveStub(KindString)))
	hand := structStub(testPkg, "Hand", memberStub("Top", card))
	pile := structStub(testPkg, "Pile", memberStub("Bottom", card))

	c, err := NewConverter(DefaultOptions())
	require.NoError(t, err)

	first, err := c.Convert(hand)
	require.NoError(t, err)
	second, err := c.Convert(pile)
	require.NoError(t, err)

	require.Contains(t, first.Definitions, "Card")
	require.Contains(t, second.Definitions, "Card")
	// The second document reuses the very fragment built for the first.
	assert.Same(t, first.Definitions["Card"], second.Definitions["Card"])
}

func TestConverter_ConvertInto(t *testing.T) {
	card := structStub(testPkg, "Card", memberStub("Face", primitiveStub(KindString)))
	hand := structStub(testPkg, "Hand", memberStub("Top", card))
	pile := structStub(testPkg, "Pile", memberStub("Bottom", card))

	c, err := NewConverter(DefaultOptions())
	require.NoError(t, err)
	doc, err := c.ConvertInto(hand, pile)
	require.NoError(t, err)

	// Every root lands in $defs; the document has no inline root.
	assert.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$defs": {
			"Card": {
				"type": "object",
				"additionalProperties": false,
				"properties": {"face": {"type": "string", "$comment": "string"}},
				"required": ["face"]
			},
			"Hand": {
				"type": "object",
				"additionalProperties": false,
				"properties": {"top": {"$ref": "#/$defs/Card"}},
				"required": ["top"]
			},
			"Pile": {
				"type": "object",
				"additionalProperties": false,
				"properties": {"bottom": {"$ref": "#/$defs/Card"}},
				"required": ["bottom"]
			}
		}
	}`, mustMarshal(t, doc))
}

func mustMarshal(t *testing.T, doc *Document) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

func marshalToRawFields(t *testing.T, doc *Document) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	fields := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(data, &fields))
	return fields
}
