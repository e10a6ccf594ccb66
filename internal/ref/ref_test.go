package ref

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantID    string
		wantValue bool
	}{
		{"bare id", `"B1"`, "B1", false},
		{"populated", `{"_id":"B2","name":"Skyline"}`, "B2", true},
		{"null", `null`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Ref[doc]
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &r))
			assert.Equal(t, tt.wantID, r.ID)
			assert.Equal(t, tt.wantValue, r.Value != nil)
		})
	}
}

func TestUnmarshalRejectsNumbers(t *testing.T) {
	var r Ref[doc]
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestMarshalPrefersValue(t *testing.T) {
	out, err := json.Marshal(Of("B2", &doc{ID: "B2", Name: "Skyline"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"B2","name":"Skyline"}`, string(out))

	out, err = json.Marshal(To[doc]("B1"))
	require.NoError(t, err)
	assert.Equal(t, `"B1"`, string(out))

	out, err = json.Marshal(Ref[doc]{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}

func TestEmbeddedInStruct(t *testing.T) {
	var u struct {
		Building Ref[doc] `json:"building"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"building":{"_id":"B9","name":"Lakeview"}}`), &u))
	assert.Equal(t, "B9", u.Building.ID)
	assert.Equal(t, "Lakeview", u.Building.Value.Name)
	assert.False(t, u.Building.IsZero())
}
