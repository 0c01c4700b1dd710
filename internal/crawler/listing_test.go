package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/fut-harvester/internal/monitoring"
	"github.com/user/fut-harvester/internal/storage"
)

// promauto registers with the default registry, so the whole test binary
// shares one Metrics value.
var testMetrics = monitoring.NewMetrics()

func TestParseListing(t *testing.T) {
	body := []byte(`<html><body>
<a class="player_name_players_table" href="/20/player/1/one">One</a>
<a class="player_name_players_table" href="/20/player/2/two">Two</a>
<a class="other" href="/nope">Nope</a>
</body></html>`)

	refs, err := ParseListing("https://www.futbin.com", body)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, "One", refs[0].Name)
	require.Equal(t, "https://www.futbin.com/20/player/1/one", refs[0].URL)
}

func TestParseListingNoAnchors(t *testing.T) {
	refs, err := ParseListing("https://www.futbin.com", []byte("<html><body><p>empty</p></body></html>"))
	require.NoError(t, err)
	require.Empty(t, refs)
}

func TestListingCrawlerRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "2" {
			// a broken page is a silent gap, not a run failure
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `<a class="player_name_players_table" href="/20/player/%s0/p">P%s</a>`, page, page)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "player_urls.csv")
	sink, err := storage.NewCSVSink(out, storage.RefsHeader)
	require.NoError(t, err)

	lc := NewListingCrawler(testSession(t), srv.URL+"/players/?page=%d", "https://www.futbin.com", 2, testMetrics, zap.NewNop())
	total, err := lc.Run(context.Background(), 3, sink)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	require.Equal(t, 2, total)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "player,url")
	require.Contains(t, string(data), "P1,https://www.futbin.com/20/player/10/p")
	require.Contains(t, string(data), "P3,https://www.futbin.com/20/player/30/p")
}
