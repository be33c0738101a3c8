package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_DuplicateDirectiveFails(t *testing.T) {
	b := NewBuilder()
	b.AddDirective(&DirectiveContract{Names: []string{"note"}})
	b.AddDirective(&DirectiveContract{Names: []string{"note"}})
	_, err := b.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "note")
}

func TestBuilder_DuplicateRoleFails(t *testing.T) {
	b := NewBuilder()
	b.AddRole(&RoleContract{Names: []string{"bdg"}})
	b.AddRole(&RoleContract{Names: []string{"bdg"}})
	_, err := b.Build()
	require.Error(t, err)
}

func TestRegistry_LookupAndNames(t *testing.T) {
	b := NewBuilder()
	c := &DirectiveContract{Names: []string{"tip", "note"}}
	b.AddDirective(c)
	reg, err := b.Build()
	require.NoError(t, err)

	require.Same(t, c, reg.Directive("tip"))
	require.Same(t, c, reg.Directive("note"))
	require.Nil(t, reg.Directive("missing"))
	require.Equal(t, []string{"note", "tip"}, reg.DirectiveNames())
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *Registry
	require.Nil(t, reg.Directive("x"))
	require.Nil(t, reg.Role("x"))
}

func TestOptionSchema_Decode(t *testing.T) {
	s := NewOptionSchema(
		Field{Name: "header_rows", Aliases: []string{"header-rows"}, Kind: FieldInt, DefaultInt: 0},
		Field{Name: "css_class", Aliases: []string{"class"}, Kind: FieldString},
		Field{Name: "open", Kind: FieldBool},
	)

	opts := s.Decode([]RawOption{
		{Key: "header-rows", Value: "2"},
		{Key: "class", Value: "wide"},
		{Key: "open", Value: ""},
		{Key: "mystery", Value: "dropped"},
	})
	require.Equal(t, 2, opts.Int("header_rows"))
	require.Equal(t, "wide", opts.String("css_class"))
	require.True(t, opts.Bool("open"))
}

func TestOptionSchema_CoercionFailureUsesDefault(t *testing.T) {
	s := NewOptionSchema(Field{Name: "n", Kind: FieldInt, DefaultInt: 5})
	opts := s.Decode([]RawOption{{Key: "n", Value: "many"}})
	require.Equal(t, 5, opts.Int("n"))
}

func TestOptionSchema_NilSchemaDecodes(t *testing.T) {
	var s *OptionSchema
	opts := s.Decode([]RawOption{{Key: "x", Value: "y"}})
	require.Equal(t, 0, opts.Int("x"))
	require.Equal(t, "", opts.String("x"))
}

func TestOptionSchema_BoolSpellings(t *testing.T) {
	s := NewOptionSchema(Field{Name: "flag", Kind: FieldBool})
	for _, v := range []string{"", "true", "yes", "on", "1"} {
		opts := s.Decode([]RawOption{{Key: "flag", Value: v}})
		require.True(t, opts.Bool("flag"), "value %q", v)
	}
	for _, v := range []string{"false", "no", "off", "0", "gibberish"} {
		opts := s.Decode([]RawOption{{Key: "flag", Value: v}})
		require.False(t, opts.Bool("flag"), "value %q", v)
	}
}
