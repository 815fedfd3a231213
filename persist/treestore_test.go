package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeStoreSaveAndLoadRoundTrips(t *testing.T) {
	store, err := OpenTreeStore(filepath.Join(t.TempDir(), "tree-store"))
	require.NoError(t, err)
	defer store.Close()

	tree := buildSampleTree()
	require.NoError(t, store.Save("session-1", tree, treeActionCodec{}, treeObservationCodec{}))

	loaded, err := store.Load("session-1", treeActionPool{}, treeObservationPool{}, treeActionCodec{}, treeObservationCodec{})
	require.NoError(t, err)

	origBeliefs, origActions := tree.Size()
	gotBeliefs, gotActions := loaded.Size()
	require.Equal(t, origBeliefs, gotBeliefs)
	require.Equal(t, origActions, gotActions)

	root := loaded.Belief(loaded.RootID)
	require.Len(t, root.Particles, 2)
}

func TestTreeStoreLoadUnknownSessionFails(t *testing.T) {
	store, err := OpenTreeStore(filepath.Join(t.TempDir(), "tree-store"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load("missing", treeActionPool{}, treeObservationPool{}, treeActionCodec{}, treeObservationCodec{})
	require.Error(t, err)
}
