package qlearning

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func init() {
	gob.Register(&tensor.Dense{})
	gob.Register(map[string]*tensor.Dense{})
}

const (
	LearningRate    = 0.001
	Gamma           = 0.9
	InputFeatures   = 11
	HiddenLayerSize = 256
	OutputActions   = 3
)

// LinearQNet is a Linear-ReLU-Linear network. The weights live outside any
// graph so that graphs of different batch sizes share them.
type LinearQNet struct {
	inputSize  int
	hiddenSize int
	outputSize int

	w1, b1 *tensor.Dense
	w2, b2 *tensor.Dense
}

func NewLinearQNet(inputSize, hiddenSize, outputSize int) *LinearQNet {
	return &LinearQNet{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		outputSize: outputSize,
		w1:         glorot(inputSize, hiddenSize),
		b1:         tensor.New(tensor.WithShape(1, hiddenSize), tensor.Of(tensor.Float64)),
		w2:         glorot(hiddenSize, outputSize),
		b2:         tensor.New(tensor.WithShape(1, outputSize), tensor.Of(tensor.Float64)),
	}
}

func glorot(rows, cols int) *tensor.Dense {
	backing := gorgonia.GlorotU(1.0)(tensor.Float64, rows, cols).([]float64)
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))
}

func (n *LinearQNet) weights() []*tensor.Dense {
	return []*tensor.Dense{n.w1, n.b1, n.w2, n.b2}
}

// netGraph is a compiled forward pass for a fixed batch size. Training
// graphs also carry the target input, the MSE loss and its gradients.
type netGraph struct {
	g          *gorgonia.ExprGraph
	x, y       *gorgonia.Node
	learnables gorgonia.Nodes
	vm         gorgonia.VM
	predVal    gorgonia.Value
	lossVal    gorgonia.Value
}

func (n *LinearQNet) buildGraph(batch int, train bool) (*netGraph, error) {
	g := gorgonia.NewGraph()
	ng := &netGraph{g: g}

	ng.x = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, n.inputSize), gorgonia.WithName("x"))
	w1 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(n.inputSize, n.hiddenSize), gorgonia.WithName("w1"), gorgonia.WithValue(n.w1))
	b1 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, n.hiddenSize), gorgonia.WithName("b1"), gorgonia.WithValue(n.b1))
	w2 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(n.hiddenSize, n.outputSize), gorgonia.WithName("w2"), gorgonia.WithValue(n.w2))
	b2 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, n.outputSize), gorgonia.WithName("b2"), gorgonia.WithValue(n.b2))
	ng.learnables = gorgonia.Nodes{w1, b1, w2, b2}

	h, err := gorgonia.Mul(ng.x, w1)
	if err != nil {
		return nil, errors.Wrap(err, "hidden matmul")
	}
	if h, err = gorgonia.BroadcastAdd(h, b1, nil, []byte{0}); err != nil {
		return nil, errors.Wrap(err, "hidden bias")
	}
	if h, err = gorgonia.Rectify(h); err != nil {
		return nil, errors.Wrap(err, "relu")
	}
	out, err := gorgonia.Mul(h, w2)
	if err != nil {
		return nil, errors.Wrap(err, "output matmul")
	}
	pred, err := gorgonia.BroadcastAdd(out, b2, nil, []byte{0})
	if err != nil {
		return nil, errors.Wrap(err, "output bias")
	}
	gorgonia.Read(pred, &ng.predVal)

	if !train {
		ng.vm = gorgonia.NewTapeMachine(g)
		return ng, nil
	}

	ng.y = gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, n.outputSize), gorgonia.WithName("y"))
	diff, err := gorgonia.Sub(pred, ng.y)
	if err != nil {
		return nil, errors.Wrap(err, "loss diff")
	}
	sq, err := gorgonia.Square(diff)
	if err != nil {
		return nil, errors.Wrap(err, "loss square")
	}
	loss, err := gorgonia.Mean(sq)
	if err != nil {
		return nil, errors.Wrap(err, "loss mean")
	}
	gorgonia.Read(loss, &ng.lossVal)

	if _, err := gorgonia.Grad(loss, ng.learnables...); err != nil {
		return nil, errors.Wrap(err, "gradients")
	}
	ng.vm = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(ng.learnables...))
	return ng, nil
}

// bind points the graph's weight nodes at the shared tensors.
func (ng *netGraph) bind(net *LinearQNet) error {
	for i, w := range net.weights() {
		if err := gorgonia.Let(ng.learnables[i], w); err != nil {
			return errors.Wrapf(err, "bind %s", ng.learnables[i].Name())
		}
	}
	return nil
}

// sync copies updated node values back when a solver replaced a tensor
// instead of writing through it.
func (ng *netGraph) sync(net *LinearQNet) error {
	for i, w := range net.weights() {
		v, ok := ng.learnables[i].Value().(*tensor.Dense)
		if !ok || v == w {
			continue
		}
		if err := tensor.Copy(w, v); err != nil {
			return errors.Wrapf(err, "sync %s", ng.learnables[i].Name())
		}
	}
	return nil
}

type graphKey struct {
	batch int
	train bool
}

// QTrainer fits a LinearQNet with Adam on the mean squared Bellman error.
type QTrainer struct {
	Model     *LinearQNet
	Gamma     float64
	solver    gorgonia.Solver
	batchSize int
	graphs    map[graphKey]*netGraph
}

// NewQTrainer trains model. Graphs for single steps and for full batches
// of batchSize are compiled once and reused.
func NewQTrainer(model *LinearQNet, lr, gamma float64, batchSize int) *QTrainer {
	return &QTrainer{
		Model:     model,
		Gamma:     gamma,
		solver:    gorgonia.NewAdamSolver(gorgonia.WithLearnRate(lr)),
		batchSize: batchSize,
		graphs:    make(map[graphKey]*netGraph),
	}
}

func (q *QTrainer) graph(batch int, train bool) (*netGraph, error) {
	key := graphKey{batch: batch, train: train}
	if ng, ok := q.graphs[key]; ok {
		return ng, nil
	}
	ng, err := q.Model.buildGraph(batch, train)
	if err != nil {
		return nil, err
	}
	if batch == 1 || batch == q.batchSize {
		q.graphs[key] = ng
	}
	return ng, nil
}

func (q *QTrainer) forward(states []float64, batch int) ([]float64, error) {
	ng, err := q.graph(batch, false)
	if err != nil {
		return nil, err
	}
	defer ng.vm.Reset()

	if err := ng.bind(q.Model); err != nil {
		return nil, err
	}
	x := tensor.New(tensor.WithShape(batch, q.Model.inputSize), tensor.WithBacking(states))
	if err := gorgonia.Let(ng.x, x); err != nil {
		return nil, errors.Wrap(err, "bind input")
	}
	if err := ng.vm.RunAll(); err != nil {
		return nil, errors.Wrap(err, "forward pass")
	}
	return valueSlice(ng.predVal)
}

// Predict returns the Q values of a single state.
func (q *QTrainer) Predict(state []float64) ([]float64, error) {
	if len(state) != q.Model.inputSize {
		return nil, errors.Errorf("state has %d features, want %d", len(state), q.Model.inputSize)
	}
	in := make([]float64, len(state))
	copy(in, state)
	return q.forward(in, 1)
}

// TrainStep runs one optimiser step over batch.
func (q *QTrainer) TrainStep(batch []Transition) (float64, error) {
	n := len(batch)
	if n == 0 {
		return 0, nil
	}
	states := make([]float64, 0, n*q.Model.inputSize)
	nextStates := make([]float64, 0, n*q.Model.inputSize)
	for _, t := range batch {
		if len(t.State) != q.Model.inputSize || len(t.NextState) != q.Model.inputSize {
			return 0, errors.Errorf("transition has %d/%d features, want %d", len(t.State), len(t.NextState), q.Model.inputSize)
		}
		if len(t.Action) != q.Model.outputSize {
			return 0, errors.Errorf("action has %d components, want %d", len(t.Action), q.Model.outputSize)
		}
		states = append(states, t.State...)
		nextStates = append(nextStates, t.NextState...)
	}

	pred, err := q.forward(states, n)
	if err != nil {
		return 0, err
	}
	nextQ, err := q.forward(nextStates, n)
	if err != nil {
		return 0, err
	}
	target := Targets(pred, nextQ, batch, q.Gamma)

	return q.fit(states, target, n)
}

func (q *QTrainer) fit(states, target []float64, batch int) (float64, error) {
	ng, err := q.graph(batch, true)
	if err != nil {
		return 0, err
	}
	defer ng.vm.Reset()

	if err := ng.bind(q.Model); err != nil {
		return 0, err
	}
	x := tensor.New(tensor.WithShape(batch, q.Model.inputSize), tensor.WithBacking(states))
	y := tensor.New(tensor.WithShape(batch, q.Model.outputSize), tensor.WithBacking(target))
	if err := gorgonia.Let(ng.x, x); err != nil {
		return 0, errors.Wrap(err, "bind input")
	}
	if err := gorgonia.Let(ng.y, y); err != nil {
		return 0, errors.Wrap(err, "bind target")
	}
	if err := ng.vm.RunAll(); err != nil {
		return 0, errors.Wrap(err, "backprop")
	}
	if err := q.solver.Step(gorgonia.NodesToValueGrads(ng.learnables)); err != nil {
		return 0, errors.Wrap(err, "adam step")
	}
	if err := ng.sync(q.Model); err != nil {
		return 0, err
	}

	loss, err := valueSlice(ng.lossVal)
	if err != nil || len(loss) == 0 {
		return 0, errors.Wrap(err, "read loss")
	}
	return loss[0], nil
}

func valueSlice(v gorgonia.Value) ([]float64, error) {
	if v == nil {
		return nil, errors.New("graph produced no value")
	}
	switch d := v.Data().(type) {
	case []float64:
		out := make([]float64, len(d))
		copy(out, d)
		return out, nil
	case float64:
		return []float64{d}, nil
	default:
		return nil, errors.Errorf("unexpected value type %T", d)
	}
}

// Save writes the weights with gob.
func (q *QTrainer) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.Wrap(err, "create model directory")
	}
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create weights file")
	}
	defer f.Close()

	weights := map[string]*tensor.Dense{
		"w1": q.Model.w1,
		"b1": q.Model.b1,
		"w2": q.Model.w2,
		"b2": q.Model.b2,
	}
	if err := gob.NewEncoder(f).Encode(weights); err != nil {
		return errors.Wrap(err, "encode weights")
	}
	return nil
}

// Load copies weights from a file written by Save. Shapes must match the
// model.
func (q *QTrainer) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "open weights file")
	}
	defer f.Close()

	var weights map[string]*tensor.Dense
	if err := gob.NewDecoder(f).Decode(&weights); err != nil {
		return errors.Wrap(err, "decode weights")
	}

	dst := map[string]*tensor.Dense{
		"w1": q.Model.w1,
		"b1": q.Model.b1,
		"w2": q.Model.w2,
		"b2": q.Model.b2,
	}
	for name, d := range dst {
		src, ok := weights[name]
		if !ok {
			return errors.Errorf("weights file has no %s", name)
		}
		if !src.Shape().Eq(d.Shape()) {
			return errors.Errorf("%s has shape %v, want %v", name, src.Shape(), d.Shape())
		}
		if err := tensor.Copy(d, src); err != nil {
			return errors.Wrapf(err, "copy %s", name)
		}
	}
	return nil
}
