package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giygas/iso639-converter/config"
	"github.com/giygas/iso639-converter/data"
	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/isoparser"
	"github.com/giygas/iso639-converter/isoparser/entities"
	"github.com/giygas/iso639-converter/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig points every path into a fresh directory holding valid sources
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, "tmp", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		return path
	}

	return &config.Config{
		TwoLetterSource: write("iso-639-2.txt", "eng||en|English|anglais\n"),
		ThreeLetterSource: write("iso-639-3.tab",
			"Id\tPart2b\tPart2t\tPart1\tScope\tLanguage_Type\tRef_Name\tComment\n"+
				"kok\tkok\tkok\t\tM\tL\tKonkani (macrolanguage)\t\n"+
				"gom\t\t\t\tI\tL\tGoan Konkani\t\n"),
		MacrolanguageSource: write("iso-639-3-macrolanguages.tab", "M_Id\tI_Id\tI_Status\nkok\tgom\tA\n"),
		NameIndexSource:     filepath.Join(dir, "tmp", "iso-639-3_Name_Index.tab"),
		RetirementsSource:   filepath.Join(dir, "tmp", "iso-639-3_Retirements.tab"),
		TwoLetterOutput:     filepath.Join(dir, "public", "iso-639-2.json"),
		ThreeLetterOutput:   filepath.Join(dir, "public", "iso-639-3.json"),
		Env:                 config.EnvTest,
		StatusAddress:       "127.0.0.1",
	}
}

func converters(cfg *config.Config) []interfaces.Converter {
	return []interfaces.Converter{NewTwoLetterConverter(cfg), NewThreeLetterConverter(cfg)}
}

func TestRunOnce(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "isoconv.prom")

	code := Run(context.Background(), cfg, converters(cfg)...)

	require.Equal(t, ExitOK, code)

	content, err := os.ReadFile(cfg.ThreeLetterOutput)
	require.NoError(t, err)

	var envelope entities.Envelope[entities.ThreeLetterLanguage]
	require.NoError(t, json.Unmarshal(content, &envelope))
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, "gom", envelope.Data[0].Alpha3)
	assert.Equal(t, "kok", envelope.Data[0].Parent)

	assert.FileExists(t, cfg.TwoLetterOutput)
	assert.FileExists(t, cfg.MetricsFile)
}

func TestRunOnceMissingSource(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(cfg.MacrolanguageSource))

	store := data.NewStatusContainer()
	code := RunOnce(cfg, store, converters(cfg))

	assert.Equal(t, ExitFailure, code)
	assert.NoFileExists(t, cfg.ThreeLetterOutput, "no output for the failed dataset")
	assert.FileExists(t, cfg.TwoLetterOutput, "other datasets still convert")

	status, ok := store.GetStatus(isoparser.DatasetThreeLetter)
	require.True(t, ok)
	assert.Contains(t, status.LastError, isoparser.ErrSourceNotFound.Error())
}

// captureLogs routes the package-level logger into a buffer for the test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := logging.DefaultLoggingService
	logging.DefaultLoggingService = &logging.LoggingService{
		Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	t.Cleanup(func() { logging.DefaultLoggingService = previous })
	return &buf
}

func TestRunOnceMissingSourceLoggedOnce(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(cfg.MacrolanguageSource))
	logs := captureLogs(t)

	code := RunOnce(cfg, data.NewStatusContainer(), converters(cfg))

	require.Equal(t, ExitFailure, code)
	assert.Equal(t, 1, strings.Count(logs.String(), "level=ERROR"), logs.String())
	assert.Contains(t, logs.String(), "iso-639-3-macrolanguages.tab")
}

func TestRunScheduledMissingSourceLoggedOnce(t *testing.T) {
	cfg := testConfig(t)
	cfg.ConvertAt = "06:00"
	require.NoError(t, os.Remove(cfg.TwoLetterSource))
	logs := captureLogs(t)

	code := Run(context.Background(), cfg, converters(cfg)...)

	require.Equal(t, ExitFailure, code)
	assert.Equal(t, 1, strings.Count(logs.String(), "level=ERROR"), logs.String())
}

func TestRunOnceSingleConverter(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(cfg.ThreeLetterSource))

	code := Run(context.Background(), cfg, NewTwoLetterConverter(cfg))

	assert.Equal(t, ExitOK, code, "the three-letter sources are not needed by the two-letter tool")
}

func TestRunScheduledInitialFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.ConvertAt = "06:00"
	require.NoError(t, os.Remove(cfg.TwoLetterSource))

	code := Run(context.Background(), cfg, converters(cfg)...)

	assert.Equal(t, ExitFailure, code)
}

func TestRunScheduledStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.ConvertAt = "06:00;18:00"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- Run(ctx, cfg, converters(cfg)...) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.ThreeLetterOutput)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "initial conversion runs before waiting")

	cancel()

	select {
	case code := <-done:
		assert.Equal(t, ExitOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled run did not stop after cancel")
	}
}

func TestRunScheduledServesStatus(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	cfg := testConfig(t)
	cfg.ConvertAt = "06:00"
	cfg.StatusPort = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- Run(ctx, cfg, converters(cfg)...) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()

		var body struct {
			Status string `json:"status"`
		}
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body.Status == "healthy"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case code := <-done:
		assert.Equal(t, ExitOK, code)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not stop after cancel")
	}
}

func TestSetup(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("ENV", "test")
	t.Setenv("ISO639_2_OUTPUT", "out/iso-639-2.json")

	cfg, err := Setup()

	require.NoError(t, err)
	assert.Equal(t, config.EnvTest, cfg.Env)
	assert.Equal(t, "out/iso-639-2.json", cfg.TwoLetterOutput)
	assert.Equal(t, isoparser.DatasetTwoLetter, NewTwoLetterConverter(cfg).Dataset())
}

func TestSetupInvalidConfig(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("LOG_RETENTION_WEEKS", "0")

	_, err := Setup()

	assert.Error(t, err)
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
}
