package model

// Option sets backing the dashboard dropdowns. Classification fields on
// create/update payloads are validated for membership against these.
var (
	Algorithms = []string{
		"xgboost", "random_forest", "svm", "neural_network",
		"linear_regression", "logistic_regression", "kmeans", "dbscan",
		"transformer", "lstm", "gpt", "bert", "other",
	}

	Functions = []string{
		"classification", "regression", "clustering", "recommendation", "generation",
	}

	ModelTypes = []string{"python", "r", "scala", "java", "other"}

	TargetLevels = []string{"nominal", "ordinal", "interval", "ratio"}

	Tools = []string{
		"python_39", "python_310", "python_311", "r_411", "r_420",
		"jupyter", "rstudio", "databricks", "sagemaker", "mlflow", "kubeflow",
	}

	// Business taxonomy option sets; organization-specific.
	ADLACREOptions = []string{"analitica_core", "data_science", "machine_learning", "ai_research"}
	ADLARESOptions = []string{"ingenieria", "investigacion", "desarrollo", "produccion"}
	ADLARUSOptions = []string{"bac", "corporate", "retail", "investment"}
	DSCAMDOptions  = []string{"clasificacion", "regresion", "clustering", "recomendacion", "generacion"}
	DSPRMDOptions  = []string{"python", "r", "scala", "java", "sql"}
)

// ValidOption reports whether value is a member of the option set.
func ValidOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
