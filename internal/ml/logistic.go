package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is a multinomial (softmax) logistic regression with
// an L2 penalty on the weights. The intercepts are not penalised.
type LogisticRegression struct {
	C             float64 // inverse regularisation strength
	MaxIter       int
	ClassBalanced bool

	weights *mat.Dense // NumClasses x d
	bias    []float64
	fitted  bool
}

func NewLogisticRegression(cfg LogisticConfig) *LogisticRegression {
	return &LogisticRegression{
		C:             cfg.C,
		MaxIter:       cfg.MaxIter,
		ClassBalanced: cfg.ClassBalanced,
	}
}

func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
	d, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}
	n := len(X)
	k := NumClasses

	data := mat.NewDense(n, d, nil)
	for i, row := range X {
		data.SetRow(i, row)
	}

	sampleWeight := make([]float64, n)
	counts := classCounts(y)
	present := 0
	for _, c := range counts {
		if c > 0 {
			present++
		}
	}
	for i, label := range y {
		sampleWeight[i] = 1
		if lr.ClassBalanced {
			sampleWeight[i] = float64(n) / (float64(present) * float64(counts[label]))
		}
	}

	c := lr.C
	if c <= 0 {
		c = 1
	}
	alpha := 1 / c

	// Parameters: k*d weights (row-major) followed by k intercepts.
	nw := k * d
	logits := mat.NewDense(n, k, nil)
	resid := mat.NewDense(n, k, nil)

	forward := func(params []float64) {
		w := mat.NewDense(k, d, params[:nw])
		logits.Mul(data, w.T())
		for i := 0; i < n; i++ {
			row := logits.RawRowView(i)
			floats.Add(row, params[nw:])
		}
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			forward(params)
			var loss float64
			for i := 0; i < n; i++ {
				row := logits.RawRowView(i)
				loss += sampleWeight[i] * (floats.LogSumExp(row) - row[y[i]])
			}
			wn := floats.Norm(params[:nw], 2)
			return loss + 0.5*alpha*wn*wn
		},
		Grad: func(grad, params []float64) {
			forward(params)
			for i := 0; i < n; i++ {
				row := logits.RawRowView(i)
				lse := floats.LogSumExp(row)
				r := resid.RawRowView(i)
				for j := range r {
					r[j] = math.Exp(row[j] - lse)
				}
				r[y[i]] -= 1
				floats.Scale(sampleWeight[i], r)
			}

			gw := mat.NewDense(k, d, grad[:nw])
			gw.Mul(resid.T(), data)
			floats.AddScaled(grad[:nw], alpha, params[:nw])

			gb := grad[nw:]
			for j := range gb {
				gb[j] = mat.Sum(resid.ColView(j))
			}
		},
	}

	init := make([]float64, nw+k)
	settings := &optimize.Settings{
		MajorIterations:   lr.MaxIter,
		GradientThreshold: 1e-6,
	}
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("logistic regression: %w", err)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("logistic regression diverged: %v", err)
		}
	}

	params := make([]float64, len(result.X))
	copy(params, result.X)
	lr.weights = mat.NewDense(k, d, params[:nw])
	lr.bias = params[nw:]
	lr.fitted = true
	return nil
}

func (lr *LogisticRegression) PredictProba(x []float64) []float64 {
	proba := make([]float64, NumClasses)
	if !lr.fitted {
		return proba
	}
	z := mat.NewVecDense(NumClasses, nil)
	z.MulVec(lr.weights, mat.NewVecDense(len(x), append([]float64(nil), x...)))
	logits := z.RawVector().Data
	floats.Add(logits, lr.bias)

	lse := floats.LogSumExp(logits)
	for c := range proba {
		proba[c] = math.Exp(logits[c] - lse)
	}
	return proba
}

func (lr *LogisticRegression) Predict(x []float64) int {
	return Argmax(lr.PredictProba(x))
}
