package inference

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	ort "github.com/yalue/onnxruntime_go"
)

// hiddenStateName matches per-layer outputs such as "hidden_states.3" or
// "hidden_state_3". Index 0 is the embedding layer.
var hiddenStateName = regexp.MustCompile(`^hidden_states?[._](\d+)$`)

// LayerOutputs returns the model's hidden-state output names ordered by layer
// index, keeping at most maxLayers (maxLayers <= 0 keeps all).
func LayerOutputs(modelPath string, maxLayers int) ([]string, error) {
	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	_, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reading model outputs: %w", err)
	}

	names := make([]string, 0, len(outputs))
	for _, o := range outputs {
		names = append(names, o.Name)
	}
	return selectLayerOutputs(names, maxLayers)
}

func selectLayerOutputs(names []string, maxLayers int) ([]string, error) {
	type layer struct {
		index int
		name  string
	}

	var layers []layer
	for _, name := range names {
		m := hiddenStateName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		layers = append(layers, layer{index: idx, name: name})
	}
	if len(layers) == 0 {
		return nil, ErrNoLayerOutputs
	}

	sort.Slice(layers, func(i, j int) bool { return layers[i].index < layers[j].index })

	if maxLayers > 0 && len(layers) > maxLayers {
		layers = layers[:maxLayers]
	}

	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.name
	}
	return out, nil
}
