package detector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/check-circular-import/pkg/cycles"
	"github.com/ritzau/check-circular-import/pkg/finder"
	"github.com/ritzau/check-circular-import/pkg/pyimport"
)

// writeModules creates one file per dotted module name. A name ending in
// ".__init__" creates a package initializer.
func writeModules(t *testing.T, root string, modules map[string]string) {
	t.Helper()
	for name, src := range modules {
		path := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))+".py")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
}

func analyze(t *testing.T, root string, extraIgnore ...string) *Result {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := New(root, extraIgnore, WithExtractor(pyimport.NewExtractor(pyimport.WithLogger(quiet))))
	require.NoError(t, err)
	return d.Analyze(context.Background())
}

func cycleModules(found []cycles.Cycle) map[string]bool {
	out := map[string]bool{}
	for _, c := range found {
		for _, m := range c {
			out[m] = true
		}
	}
	return out
}

func TestAnalyze_SimpleCycle(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"module_a": "import module_b\n\ndef func_a():\n    return module_b.func_b()\n",
		"module_b": "import module_a\n\ndef func_b():\n    return 'Hello from B'\n",
	})

	res := analyze(t, root)

	assert.Equal(t, []cycles.Cycle{{"module_a", "module_b"}}, res.Cycles)
	assert.True(t, res.HasCycles())
	assert.Equal(t, 1, res.Stats.CircularDependencies)
}

func TestAnalyze_CleanProjectStats(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"utils": "def helper():\n    return 'Helper function'\n",
		"main":  "import utils\n\ndef main():\n    return utils.helper()\n",
		"app":   "import main\nimport utils\n\ndef run():\n    return main.main()\n",
	})

	res := analyze(t, root)

	assert.Empty(t, res.Cycles)
	assert.False(t, res.HasCycles())
	assert.Equal(t, Stats{
		TotalModules:            3,
		TotalDependencies:       3,
		ModulesWithDependencies: 2,
		CircularDependencies:    0,
	}, res.Stats)
	assert.Empty(t, res.Components)
}

func TestAnalyze_NestedPackageCycle(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"mypackage.__init__":    "",
		"mypackage.submodule_a": "from mypackage import submodule_b\n",
		"mypackage.submodule_b": "from mypackage import submodule_c\n",
		"mypackage.submodule_c": "from mypackage import submodule_a\n",
	})

	res := analyze(t, root)

	assert.Equal(t, []cycles.Cycle{
		{"mypackage.submodule_a", "mypackage.submodule_b", "mypackage.submodule_c"},
	}, res.Cycles)
	assert.Equal(t, 4, res.Stats.TotalModules)
}

func TestAnalyze_PackageRelativeCycle(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"myapp.__init__": "",
		"myapp.models":   "from . import views\n\nclass Model:\n    pass\n",
		"myapp.views":    "from .models import Model\n\nclass View:\n    model = Model\n",
	})

	res := analyze(t, root)

	assert.Equal(t, []cycles.Cycle{{"myapp.models", "myapp.views"}}, res.Cycles)
}

func TestAnalyze_NestedRelativeImports(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"package.__init__":        "",
		"package.subpkg.__init__": "",
		"package.other.__init__":  "",
		"package.subpkg.module_a": "from . import module_b\nfrom ..other import module_x\n",
		"package.subpkg.module_b": "from .module_a import something\n",
		"package.other.module_x":  "from ..subpkg.module_a import func\n",
	})

	res := analyze(t, root)

	assert.ElementsMatch(t, []cycles.Cycle{
		{"package.subpkg.module_a", "package.subpkg.module_b"},
		{"package.other.module_x", "package.subpkg.module_a"},
	}, res.Cycles)
}

func TestAnalyze_SelfImport(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"self_import": "import self_import\n",
		"normal":      "import os\n",
	})

	res := analyze(t, root)

	assert.Equal(t, []cycles.Cycle{{"self_import"}}, res.Cycles)
	assert.Equal(t, [][]string{{"self_import"}}, res.Components)
}

func TestAnalyze_LongChain(t *testing.T) {
	const n = 20
	root := t.TempDir()
	modules := map[string]string{}
	for i := 0; i < n; i++ {
		modules[fmt.Sprintf("chain_%02d", i)] = fmt.Sprintf("import chain_%02d\n", (i+1)%n)
	}
	writeModules(t, root, modules)

	res := analyze(t, root)

	require.Len(t, res.Cycles, 1)
	assert.Len(t, res.Cycles[0].Modules(), n)
	assert.Equal(t, "chain_00", res.Cycles[0][0])
}

func TestAnalyze_FullyConnectedTriangle(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"multi_a": "import multi_b\nimport multi_c\n",
		"multi_b": "import multi_c\nimport multi_a\n",
		"multi_c": "import multi_a\nimport multi_b\n",
	})

	res := analyze(t, root)

	seen := map[string]bool{}
	for _, c := range res.Cycles {
		k := strings.Join(c, ",")
		assert.False(t, seen[k], "cycle %v reported twice", c)
		seen[k] = true
	}
	assert.Equal(t, map[string]bool{"multi_a": true, "multi_b": true, "multi_c": true}, cycleModules(res.Cycles))
	assert.Equal(t, [][]string{{"multi_a", "multi_b", "multi_c"}}, res.Components)
}

func TestAnalyze_LargeProject(t *testing.T) {
	root := t.TempDir()
	modules := map[string]string{
		"utils_0":          "import utils_1\n",
		"utils_1":          "import utils_2\n",
		"utils_2":          "import utils_0\n",
		"helpers.__init__": "",
		"helpers.helper_0": "import main_module_0\n",
		"helpers.helper_1": "import os\n",
	}
	for i := 0; i < 10; i++ {
		modules[fmt.Sprintf("main_module_%d", i)] = fmt.Sprintf("import utils_%d\nfrom helpers import helper_%d\n", i%3, i%2)
	}
	writeModules(t, root, modules)

	res := analyze(t, root)

	assert.ElementsMatch(t, []cycles.Cycle{
		{"helpers.helper_0", "main_module_0"},
		{"utils_0", "utils_1", "utils_2"},
	}, res.Cycles)
	assert.Equal(t, 16, res.Stats.TotalModules)
	assert.Equal(t, 2, res.Stats.CircularDependencies)
}

func TestAnalyze_RootInitExcluded(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"__init__": "import a\n",
		"a":        "import b\n",
		"b":        "",
	})

	res := analyze(t, root)

	assert.Equal(t, 2, res.Stats.TotalModules)
	assert.NotContains(t, res.Graph.Nodes, "")
	for _, e := range res.Graph.Edges {
		assert.NotEmpty(t, e.Source)
		assert.NotEmpty(t, e.Target)
	}
}

func TestAnalyze_SyntaxErrorDoesNotAbort(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"bad_syntax": "\n    def bad_function(\n        This is invalid Python syntax\n    import good\n",
		"good":       "import bad_syntax\n",
	})

	res := analyze(t, root)

	assert.Equal(t, 2, res.Stats.TotalModules)
	// The lexical fallback still sees the indented import in the broken file
	assert.Equal(t, []cycles.Cycle{{"bad_syntax", "good"}}, res.Cycles)
}

func TestAnalyze_IgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"app":        "import lib\n",
		"lib":        "",
		"venv.a":     "import venv.b\n",
		"venv.b":     "import venv.a\n",
		"vendor_x.a": "import vendor_x.b\n",
		"vendor_x.b": "import vendor_x.a\n",
	})
	eggInfo := filepath.Join(root, "mypkg.egg-info")
	require.NoError(t, os.MkdirAll(eggInfo, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(eggInfo, "setup.py"), []byte("import app\n"), 0o644))

	res := analyze(t, root, "vendor_*")

	assert.Empty(t, res.Cycles)
	assert.Equal(t, 2, res.Stats.TotalModules)
}

func TestAnalyze_NonexistentRoot(t *testing.T) {
	res := analyze(t, filepath.Join(t.TempDir(), "does", "not", "exist"))

	assert.Empty(t, res.Cycles)
	assert.Equal(t, Stats{}, res.Stats)
}

func TestAnalyze_ReuseStartsFresh(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{
		"a": "import b\n",
		"b": "import a\n",
	})
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := New(root, nil, WithExtractor(pyimport.NewExtractor(pyimport.WithLogger(quiet))))
	require.NoError(t, err)

	first := d.Analyze(context.Background())
	second := d.Analyze(context.Background())
	assert.Equal(t, first.Cycles, second.Cycles)
	assert.Equal(t, first.Stats, second.Stats)

	require.NoError(t, os.Remove(filepath.Join(root, "b.py")))
	writeModules(t, root, map[string]string{"c": ""})

	third := d.Analyze(context.Background())
	assert.Empty(t, third.Cycles)
	assert.Equal(t, Stats{TotalModules: 2}, third.Stats)
}

type countingExtractor struct {
	calls int
}

func (e *countingExtractor) Extract(_, _ string) pyimport.Result {
	e.calls++
	return pyimport.Result{Names: pyimport.NewSet("x"), Strategy: pyimport.StrategyTree}
}

func TestNew_WithExtractor(t *testing.T) {
	root := t.TempDir()
	writeModules(t, root, map[string]string{"x": "", "y": ""})
	ex := &countingExtractor{}

	d, err := New(root, nil, WithExtractor(ex))
	require.NoError(t, err)
	res := d.Analyze(context.Background())

	assert.Equal(t, 2, ex.calls)
	assert.Equal(t, []cycles.Cycle{{"x"}}, res.Cycles)
}

func TestNew_IgnoreDirs(t *testing.T) {
	d, err := New(".", []string{"venv", "test_dir"})
	require.NoError(t, err)

	ignore := d.IgnoreDirs()
	assert.Contains(t, ignore, "venv")
	assert.Contains(t, ignore, "test_dir")
	assert.Contains(t, ignore, "__pycache__")
	assert.Equal(t, len(finder.DefaultIgnoreDirs)+1, len(ignore))
	assert.True(t, filepath.IsAbs(d.Root()))
}

func TestNew_InvalidIgnorePattern(t *testing.T) {
	_, err := New(".", []string{"[unclosed"})

	assert.ErrorIs(t, err, finder.ErrInvalidPattern)
}
