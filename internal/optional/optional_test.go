package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name Field[string] `json:"name"`
	Age  Field[int]    `json:"age"`
}

func TestField_PresenceVersusZero(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":""}`), &p))

	name, ok := p.Name.Get()
	assert.True(t, ok)
	assert.Equal(t, "", name)
	assert.False(t, p.Age.IsSet())
}

func TestField_NullIsAbsent(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":null,"age":0}`), &p))

	assert.False(t, p.Name.IsSet())
	age, ok := p.Age.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, age)
}

func TestField_WrongType(t *testing.T) {
	var p patch
	assert.Error(t, json.Unmarshal([]byte(`{"age":"x"}`), &p))
}

func TestField_Marshal(t *testing.T) {
	b, err := json.Marshal(patch{Name: Of("luna")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"luna","age":null}`, string(b))
}
