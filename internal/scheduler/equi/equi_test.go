package equi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE1_IntegerRemainderGoesToEarlyInserts matches spec scenario E1:
// EQUI(S=4, partial=false), insert 1,2,3 -> [(1,2),(2,1),(3,1)].
func TestE1_IntegerRemainderGoesToEarlyInserts(t *testing.T) {
	p := New(4, false, nil)
	require.NoError(t, p.Insert(1))
	require.NoError(t, p.Insert(2))
	require.NoError(t, p.Insert(3))

	all := p.AllAllocations()
	require.Len(t, all, 3)
	assert.Equal(t, []Allocation{{1, 2}, {2, 1}, {3, 1}}, all)
}

// TestE2_EvenSplit matches spec scenario E2: EQUI(S=6, partial=false),
// insert 1,2,3 -> sum is 6, each gets exactly 2.
func TestE2_EvenSplit(t *testing.T) {
	p := New(6, false, nil)
	require.NoError(t, p.Insert(1))
	require.NoError(t, p.Insert(2))
	require.NoError(t, p.Insert(3))

	sum := 0.0
	for _, a := range p.AllAllocations() {
		assert.Equal(t, 2.0, a.Share)
		sum += a.Share
	}
	assert.Equal(t, 6.0, sum)
}

// TestE3_PartialServersSplitEvenly matches spec scenario E3:
// EQUI(S=10, partial=true), insert 1,2 -> allocation(1)=allocation(2)=5.0.
func TestE3_PartialServersSplitEvenly(t *testing.T) {
	p := New(10, true, nil)
	require.NoError(t, p.Insert(1))
	require.NoError(t, p.Insert(2))

	a1, err := p.Allocation(1)
	require.NoError(t, err)
	a2, err := p.Allocation(2)
	require.NoError(t, err)

	assert.Equal(t, 5.0, a1)
	assert.Equal(t, 5.0, a2)
}

func TestDuplicateInsertIsSoftError(t *testing.T) {
	p := New(4, false, nil)
	require.NoError(t, p.Insert(1))
	err := p.Insert(1)
	require.Error(t, err)
	assert.Equal(t, 1, p.JobCount())
}

func TestMissingDeleteIsSoftError(t *testing.T) {
	p := New(4, false, nil)
	err := p.Delete(42)
	require.Error(t, err)
}

func TestAllocationOnAbsentJobReturnsZero(t *testing.T) {
	p := New(4, false, nil)
	require.NoError(t, p.Insert(1))
	share, err := p.Allocation(99)
	require.Error(t, err)
	assert.Equal(t, 0.0, share)
}

// TestConservation is property test #1: sum of allocations equals S.
func TestConservation(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 11} {
		for _, partial := range []bool{true, false} {
			p := New(17, partial, nil)
			for i := 0; i < n; i++ {
				require.NoError(t, p.Insert(int64(i)))
			}
			sum := 0.0
			for _, a := range p.AllAllocations() {
				sum += a.Share
			}
			if partial {
				assert.InDelta(t, 17.0, sum, float64(n)*1e-9)
			} else {
				assert.Equal(t, 17.0, sum)
			}
		}
	}
}

// TestFairness is property test #2: in integer mode, max-min alloc <= 1,
// and the higher allocation goes to the first S mod n insertions.
func TestFairness(t *testing.T) {
	p := New(13, false, nil)
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, p.Insert(i))
	}
	all := p.AllAllocations()
	remainder := 13 % 5
	maxShare, minShare := all[0].Share, all[0].Share
	for i, a := range all {
		if a.Share > maxShare {
			maxShare = a.Share
		}
		if a.Share < minShare {
			minShare = a.Share
		}
		if i < remainder {
			assert.Equal(t, float64(13/5+1), a.Share)
		} else {
			assert.Equal(t, float64(13/5), a.Share)
		}
	}
	assert.LessOrEqual(t, maxShare-minShare, 1.0)
}

func TestDeleteReindexesRemainingInsertOrder(t *testing.T) {
	p := New(10, false, nil)
	require.NoError(t, p.Insert(1))
	require.NoError(t, p.Insert(2))
	require.NoError(t, p.Insert(3))
	require.NoError(t, p.Delete(2))

	all := p.AllAllocations()
	ids := []int64{all[0].ID, all[1].ID}
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}
