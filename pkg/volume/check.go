package volume

import (
	"fmt"
	"sort"

	"github.com/weberc2/osfs/pkg/extent"
	. "github.com/weberc2/osfs/pkg/types"
)

// checkChains verifies that every allocated inode's chain stays inside the
// data region, that no two extents on the volume share a block, that each
// inode's `Blocks` matches its chain, and that every live extent record is
// reachable from some inode.
func (v *Volume) checkChains() error {
	var (
		all   []Extent
		count = v.Inodes.Capacity()
		limit = v.superblock.BlockCount
	)
	for ino := InoRoot; ino < count; ino++ {
		if !v.Allocator.InoAllocated(ino) {
			continue
		}
		inode, err := v.Inodes.Get(ino)
		if err != nil {
			return fmt.Errorf("checking chains: %w", err)
		}
		chain, err := v.Extents.Chain(inode)
		if err != nil {
			return fmt.Errorf("checking chains: %w", err)
		}
		var blocks Block
		for i := range chain {
			if chain[i].Length == 0 || chain[i].End() > limit {
				return fmt.Errorf(
					"checking chains: inode `%d` has extent `[%d, %d)` "+
						"outside `[0, %d)`: %w",
					ino,
					chain[i].Start,
					chain[i].End(),
					limit,
					extent.CorruptChainErr,
				)
			}
			blocks += chain[i].Length
		}
		if blocks != inode.Blocks {
			return fmt.Errorf(
				"checking chains: inode `%d` records `%d` blocks but its "+
					"chain covers `%d`: %w",
				ino,
				inode.Blocks,
				blocks,
				extent.CorruptChainErr,
			)
		}
		all = append(all, chain...)
	}

	if used := v.Extents.Table.Used(); uint64(len(all)) != used {
		return fmt.Errorf(
			"checking chains: `%d` extent records in use but `%d` reachable: %w",
			used,
			len(all),
			extent.CorruptChainErr,
		)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	for i := 1; i < len(all); i++ {
		if all[i-1].Overlaps(&all[i]) {
			return fmt.Errorf(
				"checking chains: extents `[%d, %d)` and `[%d, %d)` overlap: %w",
				all[i-1].Start,
				all[i-1].End(),
				all[i].Start,
				all[i].End(),
				extent.CorruptChainErr,
			)
		}
	}
	return nil
}
