package toplain

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	ID       string `json:"id"`
	Owner    string `plain:"owner,context=admin"`
	Settings any    `plain:"settings,spread=flat"`
	Secret   string `plain:"-"`
	internal string
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	properties := []Property{
		{Name: "id", Field: "ID"},
		{Name: "owner", Field: "Owner", Options: PropertyOptions{Context: []string{"admin"}}},
	}
	err := RegisterType[account](r, properties...)
	require.NoError(t, err)

	t.Run("value lookup", func(t *testing.T) {
		actual, ok := r.PropertyMap(account{})
		require.True(t, ok)
		assert.Equal(t, PropertyMap(properties), actual)
	})
	t.Run("pointer lookup", func(t *testing.T) {
		actual, ok := r.PropertyMap(&account{})
		require.True(t, ok)
		assert.Len(t, actual, 2)
	})
	t.Run("unknown type", func(t *testing.T) {
		_, ok := r.PropertyMap(point{})
		assert.False(t, ok)
	})
	t.Run("nil", func(t *testing.T) {
		_, ok := r.PropertyMap(nil)
		assert.False(t, ok)
	})
	t.Run("declarations are copied", func(t *testing.T) {
		properties[0].Name = "changed"
		actual, _ := r.PropertyMap(account{})
		assert.Equal(t, "id", actual[0].Name)
	})
}

func TestRegistry_Register_Replaces(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterType[account](r, Property{Name: "id", Field: "ID"}))
	require.NoError(t, RegisterType[*account](r, Property{Name: "owner", Field: "Owner"}))

	actual, ok := r.PropertyMap(account{})
	require.True(t, ok)
	require.Len(t, actual, 1)
	assert.Equal(t, "owner", actual[0].Name)
}

func TestRegistry_Register_MapType(t *testing.T) {
	r := NewRegistry()
	err := RegisterType[map[string]any](r, Property{Name: "anything"})
	require.NoError(t, err)
}

func TestRegistry_Register_Invalid(t *testing.T) {
	tests := map[string]struct {
		typ        reflect.Type
		properties []Property
		contains   string
	}{
		"nil type": {
			typ: nil,
		},
		"unsupported type": {
			typ:      reflect.TypeFor[[]string](),
			contains: "type must be a struct or a string-keyed map",
		},
		"int keyed map": {
			typ:      reflect.TypeFor[map[int]any](),
			contains: "type must be a struct or a string-keyed map",
		},
		"empty name": {
			typ:        reflect.TypeFor[map[string]any](),
			properties: []Property{{Name: ""}},
		},
		"duplicate names": {
			typ:        reflect.TypeFor[account](),
			properties: []Property{{Name: "id", Field: "ID"}, {Name: "id", Field: "Owner"}},
			contains:   `property "id" is declared more than once`,
		},
		"empty context": {
			typ:        reflect.TypeFor[account](),
			properties: []Property{{Name: "id", Field: "ID", Options: PropertyOptions{Context: []string{""}}}},
		},
		"empty spread context": {
			typ: reflect.TypeFor[account](),
			properties: []Property{{Name: "id", Field: "ID", Options: PropertyOptions{
				Spread: &Spread{Context: []string{"ok", ""}},
			}}},
		},
		"transformer without To": {
			typ:        reflect.TypeFor[account](),
			properties: []Property{{Name: "id", Field: "ID", Options: PropertyOptions{Transformer: &Transformer{}}}},
			contains:   "transformer must define a 'To' function",
		},
		"unknown field": {
			typ:        reflect.TypeFor[account](),
			properties: []Property{{Name: "missing"}},
			contains:   `property "missing" refers to unknown field "missing"`,
		},
		"unexported field": {
			typ:        reflect.TypeFor[account](),
			properties: []Property{{Name: "internal"}},
			contains:   `property "internal" refers to unexported field "internal"`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := NewRegistry().Register(tc.typ, tc.properties...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDeclaration)
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
			assert.NotRegexp(t, "^: ", err.Error())
		})
	}
}

func TestRegistry_RegisterTagged(t *testing.T) {
	r := NewRegistry()
	upper := &Transformer{To: func(v any) any { return v }}
	err := r.RegisterTagged(reflect.TypeFor[*account](),
		Property{Name: "id", Options: PropertyOptions{Transformer: upper}},
	)
	require.NoError(t, err)

	actual, ok := r.PropertyMap(account{})
	require.True(t, ok)
	require.Len(t, actual, 3)

	assert.Equal(t, "id", actual[0].Name)
	assert.Equal(t, "ID", actual[0].Field)
	assert.Same(t, upper, actual[0].Options.Transformer)

	assert.Equal(t, "owner", actual[1].Name)
	assert.Equal(t, []string{"admin"}, actual[1].Options.Context)

	assert.Equal(t, "settings", actual[2].Name)
	require.NotNil(t, actual[2].Options.Spread)
	assert.Equal(t, []string{"flat"}, actual[2].Options.Spread.Context)
}

type Credentials struct {
	Login    string `plain:"login"`
	Password string `plain:"password"`
}

func TestRegistry_RegisterTagged_Embedded(t *testing.T) {
	type adminUser struct {
		Credentials `plain:"creds,context=admin"`

		Name string `plain:"name"`
	}
	type hiddenUser struct {
		Credentials `plain:"-"`

		Name string `plain:"name"`
	}
	creds := Credentials{Login: "jdoe", Password: "secret"}

	t.Run("named embedded struct", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterTagged(reflect.TypeFor[adminUser]()))
		properties, ok := r.PropertyMap(adminUser{})
		require.True(t, ok)
		require.Len(t, properties, 2)
		assert.Equal(t, "creds", properties[0].Name)
		assert.Equal(t, []string{"admin"}, properties[0].Options.Context)

		toPlain := CreateToPlain[adminUser](r)
		plain, err := toPlain(adminUser{Name: "John", Credentials: creds}, DefaultContext)
		require.NoError(t, err)
		assert.Equal(t, []string{"name"}, plain.Keys())

		plain, err = toPlain(adminUser{Name: "John", Credentials: creds}, "admin")
		require.NoError(t, err)
		assert.Equal(t, []string{"creds", "name"}, plain.Keys())
		assert.False(t, plain.Has("password"))
	})
	t.Run("hidden embedded struct", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterTagged(reflect.TypeFor[hiddenUser]()))
		toPlain := CreateToPlain[hiddenUser](r)
		for _, context := range []string{DefaultContext, "admin"} {
			plain, err := toPlain(hiddenUser{Name: "John", Credentials: creds}, context)
			require.NoError(t, err)
			assert.Equal(t, []string{"name"}, plain.Keys())
			assert.False(t, plain.Has("password"))
		}
	})
}

func TestRegistry_RegisterTagged_Errors(t *testing.T) {
	t.Run("nil type", func(t *testing.T) {
		var err error
		require.NotPanics(t, func() { err = NewRegistry().RegisterTagged(nil) })
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
		assert.Equal(t, "type is required: invalid property declaration", err.Error())
	})
	t.Run("override for undeclared property", func(t *testing.T) {
		err := NewRegistry().RegisterTagged(reflect.TypeFor[account](), Property{Name: "secret"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
		assert.Contains(t, err.Error(), `override for undeclared property "secret"`)
	})
	t.Run("malformed tag", func(t *testing.T) {
		type malformed struct {
			A int `plain:"a,bogus"`
		}
		err := NewRegistry().RegisterTagged(reflect.TypeFor[malformed]())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
		assert.Contains(t, err.Error(), `unknown option "bogus"`)
	})
	t.Run("invalid override options", func(t *testing.T) {
		err := NewRegistry().RegisterTagged(reflect.TypeFor[account](),
			Property{Name: "id", Options: PropertyOptions{Transformer: &Transformer{}}},
		)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
	})
}

func TestRegistry_Concurrency(t *testing.T) {
	r := NewRegistry()
	toPlain := CreateToPlain[account](r)
	require.NoError(t, r.RegisterTagged(reflect.TypeFor[account]()))

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			plain, err := toPlain(account{ID: "1", Owner: "me"}, "admin")
			assert.NoError(t, err)
			assert.Equal(t, []string{"id", "owner"}, plain.Keys())
			assert.NoError(t, r.RegisterTagged(reflect.TypeFor[account]()))
		})
	}
	wg.Wait()
}
