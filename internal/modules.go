package internal

import (
	"regexp"
	"sort"
)

// HomeModule is the module used when the path matches nothing
const HomeModule = "home"

// DefaultDisplayName is shown for unknown module keys
const DefaultDisplayName = "Dashboard"

var moduleNames = map[string]string{
	"home":            "Dashboard",
	"vectors":         "Vector Spaces",
	"matrices":        "Matrix Operations",
	"transformations": "Linear Transformations",
	"systems":         "Systems of Equations",
	"eigen":           "Eigenvalues & Eigenvectors",
	"gradient":        "Gradient Descent",
	"neural":          "Neural Networks",
	"pca":             "PCA",
	"feature_space":   "Feature Space",
	"convolution":     "Convolution Filters",
	"ml_model":        "ML Model Trainer",
}

var firstSegment = regexp.MustCompile(`^/(\w+)`)

// ModuleKeyForPath derives the module key from the first path segment.
// Segments that are not registered modules map to HomeModule.
func ModuleKeyForPath(path string) string {
	m := firstSegment.FindStringSubmatch(path)
	if m == nil {
		return HomeModule
	}
	if _, ok := moduleNames[m[1]]; !ok {
		return HomeModule
	}
	return m[1]
}

// DisplayName returns the human readable name for a module key
func DisplayName(key string) string {
	if name, ok := moduleNames[key]; ok {
		return name
	}
	return DefaultDisplayName
}

// ModuleForPath returns the derived ModuleContext for path
func ModuleForPath(path string) ModuleContext {
	key := ModuleKeyForPath(path)
	return ModuleContext{Key: key, DisplayName: DisplayName(key)}
}

// KnownModules returns the registered module keys
func KnownModules() []string {
	keys := make([]string, 0, len(moduleNames))
	for k := range moduleNames {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
