package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/smileynet/vcfview/internal/config"
	"github.com/smileynet/vcfview/internal/vcard"
)

// errExitCalled is a sentinel used to catch kong's os.Exit calls in tests.
var errExitCalled = errors.New("exit called")

const threeCards = `BEGIN:VCARD
FN:Zoe Zed
END:VCARD
BEGIN:VCARD
FN:adam apple
X-NOTE:first
END:VCARD
BEGIN:VCARD
N:Mills;Mary;;;
TEL;CELL:555-0101
END:VCARD
`

// isolate points HOME at an empty dir and clears VCFVIEW_* overrides so
// the developer's own config never leaks into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"VCFVIEW_PLAIN", "VCFVIEW_SORT", "VCFVIEW_LOG_FILE", "VCFVIEW_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI parses args and runs the selected command with buffered I/O.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	k, err := kong.New(&cli,
		kong.Vars{"version": "test"},
		kong.Writers(&out, &out),
		kong.Exit(func(int) { panic(errExitCalled) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	kctx, err := k.Parse(args)
	if err != nil {
		return out.String(), err
	}
	err = kctx.Run(&runEnv{
		ctx:        context.Background(),
		stdout:     &out,
		stdin:      strings.NewReader(stdin),
		configPath: cli.Config,
	})
	return out.String(), err
}

func TestCLI_VersionFlag(t *testing.T) {
	// Given: a CLI parser with version, commit, and date fields
	var cli CLI
	var buf bytes.Buffer
	versionStr := "v1.0.0 abc1234 2026-01-01T00:00:00Z"
	k, err := kong.New(&cli,
		kong.Vars{"version": versionStr},
		kong.Writers(&buf, &buf),
		kong.Exit(func(int) { panic(errExitCalled) }),
	)
	if err != nil {
		t.Fatal(err)
	}

	// When: --version flag is passed
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic from --version flag")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, errExitCalled) {
			panic(r)
		}

		// Then: version, commit, and date are all present in output
		output := buf.String()
		for _, want := range []string{"v1.0.0", "abc1234", "2026-01-01T00:00:00Z"} {
			if !strings.Contains(output, want) {
				t.Errorf("version output = %q, want to contain %q", output, want)
			}
		}
	}()

	k.Parse([]string{"--version"}) //nolint:errcheck // --version triggers panic via Exit hook
}

func TestCLI_Parse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantCmd string
	}{
		{"bare file selects view", []string{"cards.vcf"}, "view"},
		{"explicit view", []string{"view", "cards.vcf", "--plain"}, "view"},
		{"stdin view", []string{"view", "-"}, "view"},
		{"list", []string{"list", "cards.vcf", "--sort", "name"}, "list"},
		{"show", []string{"show", "cards.vcf", "2"}, "show"},
		{"fields", []string{"fields"}, "fields"},
		{"demo default sample", []string{"demo"}, "demo"},
		{"demo named sample", []string{"demo", "minimal"}, "demo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			k, err := kong.New(&cli, kong.Vars{"version": "test"})
			if err != nil {
				t.Fatal(err)
			}
			kctx, err := k.Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%v) error = %v", tt.args, err)
			}
			if got := strings.Fields(kctx.Command())[0]; got != tt.wantCmd {
				t.Errorf("Command() = %q, want %q", kctx.Command(), tt.wantCmd)
			}
		})
	}
}

func TestCLI_ShowRequiresIntegerIndex(t *testing.T) {
	var cli CLI
	k, err := kong.New(&cli, kong.Vars{"version": "test"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := k.Parse([]string{"show", "cards.vcf", "two"}); err == nil {
		t.Error("expected parse error for non-integer index")
	}
}

func TestList_PrintsNumberedTitles(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	out, err := runCLI(t, "", "list", path)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}

	want := "1  Zoe Zed\n2  adam apple\n3  Mary Mills\n"
	if out != want {
		t.Errorf("list output = %q, want %q", out, want)
	}
}

func TestList_SortByName(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	out, err := runCLI(t, "", "list", path, "--sort", "name")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}

	want := "1  adam apple\n2  Mary Mills\n3  Zoe Zed\n"
	if out != want {
		t.Errorf("list output = %q, want %q", out, want)
	}
}

func TestList_SortFromConfigFile(t *testing.T) {
	// Given: a --config layer selecting name order
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)
	cfgPath := writeFile(t, "vcfview.toml", "[browse]\nsort = \"name\"\n")

	// When: list runs without a --sort flag
	out, err := runCLI(t, "", "--config", cfgPath, "list", path)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}

	// Then: the config order applies
	if !strings.HasPrefix(out, "1  adam apple\n") {
		t.Errorf("list output = %q, want name order", out)
	}
}

func TestList_InvalidSort(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	_, err := runCLI(t, "", "list", path, "--sort", "size")
	if err == nil {
		t.Fatal("expected error for unknown sort order")
	}
	if got := exitCode(err); got != exitSetup {
		t.Errorf("exitCode = %d, want %d", got, exitSetup)
	}
}

func TestList_FromStdin(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, threeCards, "list", "-")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "3  Mary Mills") {
		t.Errorf("list output = %q, want stdin cards", out)
	}
}

func TestShow_PrintsOneCard(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	out, err := runCLI(t, "", "show", path, "3")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}

	for _, want := range []string{"Mary Mills\n", "  Name (parts)\n", "    tel    . (cell,voice) 555-0101\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Zoe Zed") {
		t.Errorf("show output should contain only card 3, got:\n%s", out)
	}
}

func TestShow_HideCustom(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	out, err := runCLI(t, "", "show", path, "2", "--hide-custom")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if strings.Contains(out, "X-NOTE") {
		t.Errorf("custom fields should be hidden, got:\n%s", out)
	}
}

func TestShow_IndexOutOfRange(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	for _, idx := range []string{"0", "4"} {
		_, err := runCLI(t, "", "show", path, idx)
		if err == nil {
			t.Errorf("show %s: expected out-of-range error", idx)
			continue
		}
		if !strings.Contains(err.Error(), "out of range") {
			t.Errorf("show %s: error = %v, want out of range", idx, err)
		}
	}
}

func TestView_PlainWhenNotTTY(t *testing.T) {
	// Given: stdout is a buffer, not a terminal
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	// When: the default command runs on a file
	out, err := runCLI(t, "", path)

	// Then: every card is printed as plain text
	if err != nil {
		t.Fatalf("view error = %v", err)
	}
	for _, want := range []string{"Zoe Zed\n", "adam apple\n", "  Custom fields\n", "Mary Mills\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("view output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestView_ParseErrorExitCode(t *testing.T) {
	// Given: a file with a record that never ends
	isolate(t)
	path := writeFile(t, "broken.vcf", "BEGIN:VCARD\nFN:Open\n")

	// When: it is viewed
	_, err := runCLI(t, "", "view", path)

	// Then: the parse error maps to the parse exit code
	var ue *vcard.UnterminatedRecordError
	if !errors.As(err, &ue) {
		t.Fatalf("view error = %v, want *vcard.UnterminatedRecordError", err)
	}
	if got := exitCode(err); got != exitParse {
		t.Errorf("exitCode = %d, want %d", got, exitParse)
	}
}

func TestView_MissingFile(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "view", filepath.Join(t.TempDir(), "nope.vcf"))

	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("view error = %v, want os.ErrNotExist", err)
	}
	if got := exitCode(err); got != exitSetup {
		t.Errorf("exitCode = %d, want %d", got, exitSetup)
	}
}

func TestView_MissingConfigFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)

	_, err := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "none.yaml"), "view", path)
	if err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestView_WritesLogFile(t *testing.T) {
	// Given: logging enabled through the environment
	isolate(t)
	path := writeFile(t, "cards.vcf", threeCards)
	logPath := filepath.Join(t.TempDir(), "vcfview.log")
	t.Setenv("VCFVIEW_LOG_FILE", logPath)

	// When: a file is viewed
	if _, err := runCLI(t, "", "view", path); err != nil {
		t.Fatalf("view error = %v", err)
	}

	// Then: the load is logged with its record count
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	for _, want := range []string{"cards loaded", "records=3"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log should contain %q, got:\n%s", want, data)
		}
	}
}

func TestFields_ListsRegistry(t *testing.T) {
	out, err := runCLI(t, "", "fields")
	if err != nil {
		t.Fatalf("fields error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	got := make(map[string][]string, len(lines))
	var order []string
	for _, l := range lines {
		f := strings.Fields(l)
		got[f[0]] = f[1:]
		order = append(order, f[0])
	}

	if want := "EMAIL FN N TEL VERSION"; strings.Join(order, " ") != want {
		t.Errorf("field order = %v, want %s", order, want)
	}
	if want := []string{"1", "PREF,TYPE,CELL,WORK,HOME"}; fmt.Sprint(got["TEL"]) != fmt.Sprint(want) {
		t.Errorf("TEL = %v, want %v", got["TEL"], want)
	}
	if want := []string{"5", "-"}; fmt.Sprint(got["N"]) != fmt.Sprint(want) {
		t.Errorf("N = %v, want %v", got["N"], want)
	}
}

func TestDemo_ListSamples(t *testing.T) {
	out, err := runCLI(t, "", "demo", "--list")
	if err != nil {
		t.Fatalf("demo --list error = %v", err)
	}
	if out != "contacts\nminimal\n" {
		t.Errorf("demo --list = %q, want %q", out, "contacts\nminimal\n")
	}
}

func TestDemo_DefaultSample(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "", "demo")
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}
	for _, want := range []string{"Jane Doe", "Jürgen Müller", "Edgar Allan Poe", "!No name in contact"} {
		if !strings.Contains(out, want) {
			t.Errorf("demo output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestDemo_LocalDirOverridesSample(t *testing.T) {
	// Given: a local samples dir with its own minimal.vcf and an extra sample
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "minimal.vcf"), []byte("BEGIN:VCARD\nFN:Local Only\nEND:VCARD\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "team.vcf"), []byte("BEGIN:VCARD\nFN:Team\nEND:VCARD\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// When: the sample is opened with --dir
	out, err := runCLI(t, "", "demo", "minimal", "--dir", dir)
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}

	// Then: the local file wins
	if !strings.Contains(out, "Local Only") || strings.Contains(out, "Ada Lovelace") {
		t.Errorf("demo output = %q, want local sample", out)
	}

	// And: the listing merges both sources
	out, err = runCLI(t, "", "demo", "--list", "--dir", dir)
	if err != nil {
		t.Fatalf("demo --list error = %v", err)
	}
	if out != "contacts\nminimal\nteam\n" {
		t.Errorf("demo --list = %q", out)
	}
}

func TestDemo_UnknownSample(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "demo", "nope")
	if err == nil {
		t.Fatal("expected error for unknown sample")
	}
	if !strings.Contains(err.Error(), "contacts") {
		t.Errorf("error = %v, want the available samples listed", err)
	}
}

func TestSortCards(t *testing.T) {
	cards := []*vcard.Record{
		{FormattedName: "bob"},
		{FormattedName: "Alice"},
		{FormattedName: "alice"},
	}

	sortCards(cards, config.SortFile)
	if cards[0].Title() != "bob" {
		t.Errorf("SortFile should keep input order, got %q first", cards[0].Title())
	}

	sortCards(cards, config.SortName)
	got := []string{cards[0].Title(), cards[1].Title(), cards[2].Title()}
	if want := []string{"Alice", "alice", "bob"}; fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("SortName order = %v, want %v (stable for equal keys)", got, want)
	}
}

func TestExitCode(t *testing.T) {
	parseErr := &vcard.ParseError{Record: 1, Line: 3, Err: &vcard.MalformedContinuationError{Line: " x"}}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"plain error", errors.New("boom"), exitSetup},
		{"parse error", parseErr, exitParse},
		{"wrapped parse error", fmt.Errorf("view: %w", parseErr), exitParse},
		{"missing file", os.ErrNotExist, exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
