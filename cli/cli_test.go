package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-surface/config"
	"go-surface/daw"
	"go-surface/host"
)

func TestSelectSurfaces(t *testing.T) {
	layouts := []config.Layout{{Name: "Launchpad X"}, {Name: "Tablet"}}

	all, err := selectSurfaces(layouts, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := selectSurfaces(layouts, []string{"tablet"})
	require.NoError(t, err)
	assert.Equal(t, "Tablet", one[0].Name)

	_, err = selectSurfaces(layouts, []string{"nope"})
	assert.Error(t, err)
}

func TestSerialLayout(t *testing.T) {
	l := serialLayout("/dev/ttyACM0", 115200)
	require.NoError(t, l.Validate())
	assert.Equal(t, config.TransportSerial, l.Transport)
	assert.Equal(t, 115200, l.SerialBaud)
}

func TestDefaultLayoutFile(t *testing.T) {
	cfg := defaultLayoutFile()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Surfaces, 2)

	path := filepath.Join(t.TempDir(), "surfaces.yaml")
	require.NoError(t, cfg.Save(path))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.TransportWebSocket, loaded.Surfaces[1].Transport)
}

func TestAddSurfaces(t *testing.T) {
	web := config.DefaultLayout(config.ControllerVirtual)
	web.Name = "Tablet"
	web.Transport = config.TransportWebSocket
	layouts := []config.Layout{
		config.DefaultLayout(config.ControllerLaunchpadX),
		config.DefaultLayout(config.ControllerVirtual),
		web,
	}

	h := host.New(daw.New(), 30)
	mux := http.NewServeMux()
	b, err := addSurfaces(h, layouts, mux)
	require.NoError(t, err)
	defer b.close()

	assert.Equal(t, 1, b.midi)
	assert.Equal(t, 1, b.web)
	assert.Len(t, b.closers, 1)
	assert.Len(t, h.Stats(), 2)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/surface/Tablet", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddSurfacesNeedsPort(t *testing.T) {
	l := config.DefaultLayout(config.ControllerGeneric)
	l.AutoConnect = false
	_, err := addSurfaces(host.New(daw.New(), 30), []config.Layout{l}, http.NewServeMux())
	assert.ErrorContains(t, err, "port_name")
}

func TestAddSurfacesNothingToRun(t *testing.T) {
	_, err := addSurfaces(host.New(daw.New(), 30), []config.Layout{config.DefaultLayout(config.ControllerVirtual)}, http.NewServeMux())
	assert.Error(t, err)
}

func TestPrintPorts(t *testing.T) {
	var buf bytes.Buffer
	layouts := []config.Layout{config.DefaultLayout(config.ControllerLaunchpadX)}
	printPorts(&buf, layouts, []string{"Launchpad X LPX MIDI In", "Keyboard"}, nil, []string{"/dev/ttyACM0"})

	out := buf.String()
	assert.Contains(t, out, "Launchpad X LPX MIDI In")
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasSuffix(lines[1], "Launchpad X"))
	assert.True(t, strings.HasSuffix(lines[2], "-"))
	assert.Contains(t, out, "MIDI outputs:\n  (none)")
	assert.Contains(t, out, "/dev/ttyACM0")
}

func TestBindFlags(t *testing.T) {
	defer viper.Reset()
	viper.Set("hz", 60)
	viper.Set("surface", []any{"Tablet", "Launchpad X"})
	viper.Set("listen", ":9000")

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Int("hz", 0, "")
	cmd.Flags().StringSlice("surface", nil, "")
	cmd.Flags().String("listen", ":8765", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--listen", ":1"}))

	require.NoError(t, bindFlags(cmd))

	hz, _ := cmd.Flags().GetInt("hz")
	assert.Equal(t, 60, hz)
	names, _ := cmd.Flags().GetStringSlice("surface")
	assert.Equal(t, []string{"Tablet", "Launchpad X"}, names)
	listen, _ := cmd.Flags().GetString("listen")
	assert.Equal(t, ":1", listen)
}
