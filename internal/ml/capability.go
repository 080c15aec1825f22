package ml

// Scaler maps a raw feature vector into the representation a predictor was
// trained on
type Scaler interface {
	Transform(x []float64) ([]float64, error)
}

// Predictor maps a scaled feature vector to a regression value or an encoded
// class code
type Predictor interface {
	Predict(x []float64) (float64, error)
}

// Decoder maps an encoded class code back to its class name
type Decoder interface {
	Decode(code float64) (string, error)
}

// Task distinguishes regression bundles from classification bundles
type Task string

const (
	TaskRegression     Task = "regression"
	TaskClassification Task = "classification"
)

// Component kinds understood by the bundle loader
const (
	KindStandardScaler = "standard"
	KindIdentityScaler = "identity"

	KindLinear   = "linear"
	KindSoftmax  = "softmax"
	KindForest   = "forest"
	KindConstant = "constant"

	KindLabelEncoder = "label_encoder"
)
