package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// batchNormEps matches torch.nn.BatchNorm1d.
const batchNormEps = 1e-5

// DefaultHiddenSizes is the architecture the published weights were trained with.
var DefaultHiddenSizes = []int{128, 64, 32}

type dense struct {
	w *mat.Dense
	b *mat.VecDense
}

func (d dense) apply(in *mat.VecDense) *mat.VecDense {
	r, _ := d.w.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(d.w, in)
	out.AddVec(out, d.b)
	return out
}

// batchNorm holds inference-time statistics only; the running mean and
// variance are folded into a per-channel scale and shift.
type batchNorm struct {
	scale []float64
	shift []float64
}

func newBatchNorm(gamma, beta, runMean, runVar []float64) batchNorm {
	bn := batchNorm{scale: make([]float64, len(gamma)), shift: make([]float64, len(gamma))}
	for i := range gamma {
		bn.scale[i] = gamma[i] / math.Sqrt(runVar[i]+batchNormEps)
		bn.shift[i] = beta[i] - runMean[i]*bn.scale[i]
	}
	return bn
}

type block struct {
	linear dense
	norm   batchNorm
}

// Network is a fully connected regressor:
// [Linear -> ReLU -> BatchNorm -> Dropout] x len(hidden) -> Linear(1).
// It is always evaluated in inference mode, so dropout is the identity.
type Network struct {
	inputSize int
	hidden    []int
	blocks    []block
	out       dense
}

// InputSize returns the expected feature vector length.
func (n *Network) InputSize() int { return n.inputSize }

// HiddenSizes returns a copy of the hidden layer widths.
func (n *Network) HiddenSizes() []int { return append([]int(nil), n.hidden...) }

// Forward runs one sample through the network.
func (n *Network) Forward(x []float64) (float64, error) {
	if len(x) != n.inputSize {
		return 0, fmt.Errorf("%w: network expects %d inputs, got %d", ErrShapeMismatch, n.inputSize, len(x))
	}
	h := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for _, b := range n.blocks {
		z := b.linear.apply(h)
		data := z.RawVector().Data
		for i, v := range data {
			if v < 0 {
				v = 0
			}
			data[i] = v*b.norm.scale[i] + b.norm.shift[i]
		}
		h = z
	}
	y := n.out.apply(h).AtVec(0)
	if !finite(y) {
		return 0, fmt.Errorf("%w: network output %v", ErrNonFinite, y)
	}
	return y, nil
}

// NewUntrainedNetwork initializes a network the way torch does for fresh
// nn.Linear layers: weights and biases uniform in +-1/sqrt(fan_in). Batch
// norm layers start as identity. The seed makes the output reproducible.
func NewUntrainedNetwork(inputSize int, hidden []int, seed uint64) (*Network, error) {
	if err := validateArch(inputSize, hidden); err != nil {
		return nil, err
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	n := &Network{inputSize: inputSize, hidden: append([]int(nil), hidden...)}
	prev := inputSize
	for _, width := range hidden {
		gamma := make([]float64, width)
		runVar := make([]float64, width)
		for i := range gamma {
			gamma[i] = 1
			runVar[i] = 1
		}
		n.blocks = append(n.blocks, block{
			linear: randomDense(width, prev, src),
			norm:   newBatchNorm(gamma, make([]float64, width), make([]float64, width), runVar),
		})
		prev = width
	}
	n.out = randomDense(1, prev, src)
	return n, nil
}

func randomDense(rows, cols int, src rand.Source) dense {
	bound := 1 / math.Sqrt(float64(cols))
	u := distuv.Uniform{Min: -bound, Max: bound, Src: src}
	w := make([]float64, rows*cols)
	for i := range w {
		w[i] = u.Rand()
	}
	b := make([]float64, rows)
	for i := range b {
		b[i] = u.Rand()
	}
	return dense{w: mat.NewDense(rows, cols, w), b: mat.NewVecDense(rows, b)}
}

// NewNetwork assembles a network from tensors named like a torch state_dict
// of nn.Sequential: model.<idx>.weight, model.<idx>.bias and, for batch norm,
// model.<idx>.running_mean / running_var.
func NewNetwork(inputSize int, hidden []int, tensors map[string]Tensor) (*Network, error) {
	if err := validateArch(inputSize, hidden); err != nil {
		return nil, err
	}
	n := &Network{inputSize: inputSize, hidden: append([]int(nil), hidden...)}
	prev := inputSize
	for i, width := range hidden {
		lin, err := loadDense(tensors, 4*i, width, prev)
		if err != nil {
			return nil, err
		}
		bnPrefix := fmt.Sprintf("model.%d.", 4*i+2)
		var vecs [4][]float64
		for j, suffix := range []string{"weight", "bias", "running_mean", "running_var"} {
			v, err := vector(tensors, bnPrefix+suffix, width)
			if err != nil {
				return nil, err
			}
			vecs[j] = v
		}
		for _, v := range vecs[3] {
			if v+batchNormEps <= 0 {
				return nil, fmt.Errorf("%w: %srunning_var has a negative variance", ErrNonFinite, bnPrefix)
			}
		}
		n.blocks = append(n.blocks, block{linear: lin, norm: newBatchNorm(vecs[0], vecs[1], vecs[2], vecs[3])})
		prev = width
	}
	out, err := loadDense(tensors, 4*len(hidden), 1, prev)
	if err != nil {
		return nil, err
	}
	n.out = out
	return n, nil
}

func loadDense(tensors map[string]Tensor, idx, rows, cols int) (dense, error) {
	wName := fmt.Sprintf("model.%d.weight", idx)
	w, ok := tensors[wName]
	if !ok {
		return dense{}, fmt.Errorf("%w: %s", ErrMissingTensor, wName)
	}
	if err := w.check(wName, rows, cols); err != nil {
		return dense{}, err
	}
	b, err := vector(tensors, fmt.Sprintf("model.%d.bias", idx), rows)
	if err != nil {
		return dense{}, err
	}
	return dense{
		w: mat.NewDense(rows, cols, append([]float64(nil), w.Data...)),
		b: mat.NewVecDense(rows, b),
	}, nil
}

func vector(tensors map[string]Tensor, name string, size int) ([]float64, error) {
	t, ok := tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTensor, name)
	}
	if err := t.check(name, size); err != nil {
		return nil, err
	}
	return append([]float64(nil), t.Data...), nil
}

func validateArch(inputSize int, hidden []int) error {
	if inputSize <= 0 {
		return fmt.Errorf("%w: input size %d", ErrShapeMismatch, inputSize)
	}
	for _, h := range hidden {
		if h <= 0 {
			return fmt.Errorf("%w: hidden size %d", ErrShapeMismatch, h)
		}
	}
	return nil
}
