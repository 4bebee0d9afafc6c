package classifier

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv guards process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxPredictor runs a converted tree model exposing a label output and a
// [batch, 2] probability tensor (ZipMap disabled).
type onnxPredictor struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	inputName string
	labelOut  string
	probOut   string
	features  int
}

func loadONNX(modelPath, libPath string) (*onnxPredictor, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: initialize runtime from %s: %w", libPath, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected a single input, got %d", len(inputs))
	}
	dims := inputs[0].Dimensions
	if len(dims) != 2 || dims[1] <= 0 {
		return nil, fmt.Errorf("onnx: expected [batch, features] input, got %v", dims)
	}
	labelOut, probOut, err := pickOutputs(outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{labelOut, probOut}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}

	return &onnxPredictor{
		session:   session,
		inputName: inputs[0].Name,
		labelOut:  labelOut,
		probOut:   probOut,
		features:  int(dims[1]),
	}, nil
}

// pickOutputs finds the label and probability tensors among the model outputs.
func pickOutputs(outputs []ort.InputOutputInfo) (label, prob string, err error) {
	if len(outputs) < 2 {
		return "", "", fmt.Errorf("onnx: expected label and probability outputs, got %d", len(outputs))
	}
	for _, o := range outputs {
		if o.OrtValueType != ort.ONNXTypeTensor {
			return "", "", fmt.Errorf("onnx: output %q is not a tensor; export with ZipMap disabled", o.Name)
		}
		switch {
		case o.DataType == ort.TensorElementDataTypeInt64 && label == "":
			label = o.Name
		case o.DataType == ort.TensorElementDataTypeFloat && prob == "":
			prob = o.Name
		}
	}
	if label == "" || prob == "" {
		return "", "", fmt.Errorf("onnx: could not identify label and probability outputs")
	}
	return label, prob, nil
}

func (o *onnxPredictor) Name() string     { return "onnx" }
func (o *onnxPredictor) NumFeatures() int { return o.features }

func (o *onnxPredictor) Predict(row []float64) (Prediction, error) {
	if err := checkRow(o, row); err != nil {
		return Prediction{}, err
	}

	data := make([]float32, len(row))
	for i, v := range row {
		data[i] = float32(v)
	}
	in, err := ort.NewTensor(ort.NewShape(1, int64(len(row))), data)
	if err != nil {
		return Prediction{}, fmt.Errorf("onnx: create input tensor: %w", err)
	}
	defer in.Destroy()

	label, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return Prediction{}, fmt.Errorf("onnx: create label tensor: %w", err)
	}
	defer label.Destroy()

	probs, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return Prediction{}, fmt.Errorf("onnx: create probability tensor: %w", err)
	}
	defer probs.Destroy()

	o.mu.Lock()
	err = o.session.Run([]ort.Value{in}, []ort.Value{label, probs})
	o.mu.Unlock()
	if err != nil {
		return Prediction{}, fmt.Errorf("onnx: inference failed: %w", err)
	}

	p := probs.GetData()
	return Prediction{
		Label:         int(label.GetData()[0]),
		Probabilities: [2]float64{float64(p[0]), float64(p[1])},
	}, nil
}

// Close releases the inference session.
func (o *onnxPredictor) Close() error {
	return o.session.Destroy()
}
