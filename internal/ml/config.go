package ml

// Ensemble member names, in reporting order.
const (
	NaiveBayesName         = "Naive Bayes"
	RandomForestName       = "Random Forest"
	LogisticRegressionName = "Logistic Regression"
)

type NaiveBayesConfig struct {
	VarSmoothing float64 `yaml:"var_smoothing"`
}

type ForestConfig struct {
	Trees           int  `yaml:"trees"`
	MaxDepth        int  `yaml:"max_depth"`
	MinSamplesSplit int  `yaml:"min_samples_split"`
	MinSamplesLeaf  int  `yaml:"min_samples_leaf"`
	Bootstrap       bool `yaml:"bootstrap"`
}

type LogisticConfig struct {
	C             float64 `yaml:"c"`
	MaxIter       int     `yaml:"max_iter"`
	ClassBalanced bool    `yaml:"class_balanced"`
}

// EnsembleConfig holds the hyperparameters of all three members.
type EnsembleConfig struct {
	Folds              int              `yaml:"folds"`
	Seed               int64            `yaml:"seed"`
	NaiveBayes         NaiveBayesConfig `yaml:"naive_bayes"`
	RandomForest       ForestConfig     `yaml:"random_forest"`
	LogisticRegression LogisticConfig   `yaml:"logistic_regression"`
}

func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{
		Folds: 5,
		Seed:  42,
		NaiveBayes: NaiveBayesConfig{
			VarSmoothing: 1e-8,
		},
		RandomForest: ForestConfig{
			Trees:           100,
			MaxDepth:        10,
			MinSamplesSplit: 5,
			MinSamplesLeaf:  2,
			Bootstrap:       true,
		},
		LogisticRegression: LogisticConfig{
			C:             0.8,
			MaxIter:       2000,
			ClassBalanced: true,
		},
	}
}

// Members returns constructors for the three ensemble slots. The forest
// seed is offset by iteration so retrains are reproducible but distinct.
func (c EnsembleConfig) Members(iteration int) []Member {
	seed := c.Seed + int64(iteration)
	return []Member{
		{Name: NaiveBayesName, New: func() Classifier { return NewGaussianNB(c.NaiveBayes.VarSmoothing) }},
		{Name: RandomForestName, New: func() Classifier { return NewRandomForest(c.RandomForest, seed) }},
		{Name: LogisticRegressionName, New: func() Classifier { return NewLogisticRegression(c.LogisticRegression) }},
	}
}
