package stock

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStoreStartsEmpty(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()
	require.NotNil(t, snap)
	require.Equal(t, int64(0), snap.Version)
	require.Empty(t, snap.Inventory)
	require.Empty(t, snap.Outbound)
}

func TestReplaceBumpsVersion(t *testing.T) {
	s := NewStore()
	v1 := s.Replace([]InventoryRecord{{ItemNumber: "A-1", Month: 1}}, nil)
	v2 := s.Replace(nil, []OutboundRecord{{ItemNumber: "A-1", Month: 1}})
	require.Equal(t, int64(1), v1)
	require.Equal(t, int64(2), v2)
	require.Equal(t, int64(2), s.Snapshot().Version)
}

func TestCommitRequiresBothTables(t *testing.T) {
	s := NewStore()
	s.Replace([]InventoryRecord{{ItemNumber: "OLD", Month: 1}}, nil)

	id := s.StageInventory(uuid.Nil, []InventoryRecord{{ItemNumber: "NEW", Month: 1}})
	require.NotEqual(t, uuid.Nil, id)

	_, err := s.Commit(id)
	require.ErrorIs(t, err, ErrStagingIncomplete)
	// Live data untouched by the failed apply.
	require.Equal(t, "OLD", s.Snapshot().Inventory[0].ItemNumber)

	got := s.StageOutbound(id, []OutboundRecord{{ItemNumber: "NEW", Month: 1}})
	require.Equal(t, id, got)

	version, err := s.Commit(id)
	require.NoError(t, err)
	require.Equal(t, int64(2), version)

	snap := s.Snapshot()
	require.Equal(t, "NEW", snap.Inventory[0].ItemNumber)
	require.Equal(t, "NEW", snap.Outbound[0].ItemNumber)
}

func TestCommitConsumesStaging(t *testing.T) {
	s := NewStore()
	id := s.StageInventory(uuid.Nil, nil)
	s.StageOutbound(id, nil)

	_, err := s.Commit(id)
	require.NoError(t, err)

	_, err = s.Commit(id)
	require.ErrorIs(t, err, ErrStagingNotFound)
}

func TestCommitUnknownID(t *testing.T) {
	s := NewStore()
	_, err := s.Commit(uuid.New())
	require.ErrorIs(t, err, ErrStagingNotFound)
}

func TestStagedState(t *testing.T) {
	s := NewStore()
	id := s.StageOutbound(uuid.Nil, nil)

	hasInv, hasOut, err := s.StagedState(id)
	require.NoError(t, err)
	require.False(t, hasInv)
	require.True(t, hasOut)

	_, _, err = s.StagedState(uuid.New())
	require.ErrorIs(t, err, ErrStagingNotFound)
}

func TestStagingExpires(t *testing.T) {
	s := NewStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	id := s.StageInventory(uuid.Nil, nil)
	s.StageOutbound(id, nil)

	s.now = func() time.Time { return base.Add(defaultStagingTTL + time.Minute) }
	_, err := s.Commit(id)
	require.ErrorIs(t, err, ErrStagingNotFound)
}

func TestRestageOverwritesTable(t *testing.T) {
	s := NewStore()
	id := s.StageInventory(uuid.Nil, []InventoryRecord{{ItemNumber: "FIRST", Month: 1}})
	s.StageInventory(id, []InventoryRecord{{ItemNumber: "SECOND", Month: 1}})
	s.StageOutbound(id, nil)

	_, err := s.Commit(id)
	require.NoError(t, err)
	require.Equal(t, "SECOND", s.Snapshot().Inventory[0].ItemNumber)
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := NewStore()
	s.Replace(
		[]InventoryRecord{{ItemNumber: "A-1", Month: 1, Quantity: 1}},
		[]OutboundRecord{{ItemNumber: "A-1", Month: 1, Quantity: 1}},
	)

	var wg sync.WaitGroup
	stopped := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			n := float64(i)
			s.Replace(
				[]InventoryRecord{{ItemNumber: "A-1", Month: 1, Quantity: n}},
				[]OutboundRecord{{ItemNumber: "A-1", Month: 1, Quantity: n}},
			)
		}
		close(stopped)
	}()

	for j := 0; j < 4; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stopped:
					return
				default:
				}
				snap := s.Snapshot()
				// Both tables always come from the same replace call.
				if len(snap.Inventory) > 0 && len(snap.Outbound) > 0 {
					if snap.Inventory[0].Quantity != snap.Outbound[0].Quantity {
						t.Error("torn snapshot observed")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
