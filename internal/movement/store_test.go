package movement

import (
	"testing"
	"time"

	"github.com/valuehound/valuehound/pkg/models"
)

func snapshotAt(eventID, selection string, odds float64, at time.Time) models.OddsSnapshot {
	return models.OddsSnapshot{
		Timestamp: at,
		EventID:   eventID,
		SportKey:  "basketball_nba",
		Bookmaker: "Pinnacle",
		Market:    models.MarketH2H,
		Selection: selection,
		Odds:      odds,
	}
}

func TestStoreAppendPreservesOrder(t *testing.T) {
	store := NewStore(24)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.Append([]models.OddsSnapshot{
		snapshotAt("ev1", "Lakers", 1.80, base),
		snapshotAt("ev1", "Lakers", 1.85, base.Add(10*time.Minute)),
		snapshotAt("ev1", "Lakers", 1.90, base.Add(20*time.Minute)),
	})

	snaps := store.Snapshots("ev1")
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Timestamp.Before(snaps[i-1].Timestamp) {
			t.Errorf("snapshot %d out of order", i)
		}
	}
}

func TestStorePurgeRetention(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(24).WithClock(func() time.Time { return base })

	store.Append([]models.OddsSnapshot{
		snapshotAt("ev1", "Lakers", 1.80, base.Add(-25*time.Hour)), // past retention
		snapshotAt("ev1", "Lakers", 1.85, base.Add(-23*time.Hour)), // inside
		snapshotAt("ev2", "Celtics", 2.00, base.Add(-30*time.Hour)),
	})

	store.Purge()

	if got := len(store.Snapshots("ev1")); got != 1 {
		t.Errorf("ev1 snapshots after purge = %d, want 1", got)
	}
	if got := store.Snapshots("ev2"); got != nil {
		t.Errorf("ev2 should be fully purged, got %d snapshots", len(got))
	}
	if got := store.EventCount(); got != 1 {
		t.Errorf("EventCount after purge = %d, want 1", got)
	}
}

func TestStoreSelectionSnapshots(t *testing.T) {
	store := NewStore(24)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.Append([]models.OddsSnapshot{
		snapshotAt("ev1", "Lakers", 1.80, base),
		snapshotAt("ev1", "Celtics", 2.10, base),
		snapshotAt("ev1", "Lakers", 1.85, base.Add(10*time.Minute)),
	})

	lakers := store.SelectionSnapshots("ev1", "Lakers")
	if len(lakers) != 2 {
		t.Fatalf("got %d Lakers snapshots, want 2", len(lakers))
	}
	for _, snap := range lakers {
		if snap.Selection != "Lakers" {
			t.Errorf("unexpected selection %q", snap.Selection)
		}
	}
}

func TestStoreSnapshotsReturnsCopy(t *testing.T) {
	store := NewStore(24)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.Append([]models.OddsSnapshot{snapshotAt("ev1", "Lakers", 1.80, base)})

	snaps := store.Snapshots("ev1")
	snaps[0].Odds = 99.0

	if got := store.Snapshots("ev1")[0].Odds; got != 1.80 {
		t.Errorf("mutating the returned slice changed the store: odds = %v", got)
	}
}
