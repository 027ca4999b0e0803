package inference

import (
	"errors"
	"reflect"
	"testing"
)

func TestSelectLayerOutputs(t *testing.T) {
	tests := []struct {
		name      string
		outputs   []string
		maxLayers int
		want      []string
		wantErr   error
	}{
		{
			name:    "orders numerically",
			outputs: []string{"hidden_states.10", "hidden_states.2", "last_hidden_state", "hidden_states.0"},
			want:    []string{"hidden_states.0", "hidden_states.2", "hidden_states.10"},
		},
		{
			name:    "underscore form",
			outputs: []string{"hidden_state_1", "hidden_state_0"},
			want:    []string{"hidden_state_0", "hidden_state_1"},
		},
		{
			name:      "capped",
			outputs:   []string{"hidden_states.0", "hidden_states.1", "hidden_states.2"},
			maxLayers: 2,
			want:      []string{"hidden_states.0", "hidden_states.1"},
		},
		{
			name:    "none",
			outputs: []string{"logits", "last_hidden_state"},
			wantErr: ErrNoLayerOutputs,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := selectLayerOutputs(tc.outputs, tc.maxLayers)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("selectLayerOutputs() = %v, want %v", got, tc.want)
			}
		})
	}
}
