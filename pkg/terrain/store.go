package terrain

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-mclib/data/pkg/data/chunks"
	"github.com/go-mclib/physics/pkg/collisions"
)

var ErrChunkNotLoaded = errors.New("chunk not loaded")

// Store holds Minecraft chunk columns and answers voxel queries against them.
// Chunks may be loaded and unloaded from other goroutines between ticks.
type Store struct {
	mu     sync.RWMutex
	Chunks map[int64]*chunks.ChunkColumn

	onChunkLoad   []func(x, z int32)
	onChunkUnload []func(x, z int32)
	onBlockUpdate []func(x, y, z int, stateID int32)
}

func NewStore() *Store {
	return &Store{Chunks: make(map[int64]*chunks.ChunkColumn)}
}

// chunkKey creates a unique key for a chunk position
func chunkKey(chunkX, chunkZ int32) int64 {
	return int64(chunkX)<<32 | int64(uint32(chunkZ))
}

// events

func (s *Store) OnChunkLoad(cb func(x, z int32))   { s.onChunkLoad = append(s.onChunkLoad, cb) }
func (s *Store) OnChunkUnload(cb func(x, z int32)) { s.onChunkUnload = append(s.onChunkUnload, cb) }
func (s *Store) OnBlockUpdate(cb func(x, y, z int, stateID int32)) {
	s.onBlockUpdate = append(s.onBlockUpdate, cb)
}

// actions

// SetChunk stores a chunk column, replacing any column at the same position.
func (s *Store) SetChunk(column *chunks.ChunkColumn) {
	s.mu.Lock()
	s.Chunks[chunkKey(column.X, column.Z)] = column
	s.mu.Unlock()

	for _, cb := range s.onChunkLoad {
		cb(column.X, column.Z)
	}
}

// UnloadChunk drops the column at chunk coordinates (cx, cz).
func (s *Store) UnloadChunk(cx, cz int32) bool {
	s.mu.Lock()
	_, ok := s.Chunks[chunkKey(cx, cz)]
	delete(s.Chunks, chunkKey(cx, cz))
	s.mu.Unlock()

	if ok {
		for _, cb := range s.onChunkUnload {
			cb(cx, cz)
		}
	}
	return ok
}

// GetBlock returns the block state ID at the given world coordinates.
func (s *Store) GetBlock(x, y, z int) int32 {
	chunkX, chunkZ := chunks.ChunkPos(x, z)

	s.mu.RLock()
	chunk := s.Chunks[chunkKey(chunkX, chunkZ)]
	s.mu.RUnlock()

	if chunk == nil {
		return 0
	}
	return chunk.GetBlockState(x, y, z)
}

// SetBlock sets the block state at the given world coordinates, creating the
// section if needed.
func (s *Store) SetBlock(x, y, z int, stateID int32) error {
	chunkX, chunkZ := chunks.ChunkPos(x, z)

	s.mu.Lock()
	chunk := s.Chunks[chunkKey(chunkX, chunkZ)]
	if chunk == nil {
		s.mu.Unlock()
		return fmt.Errorf("set block at (%d, %d, %d): %w", x, y, z, ErrChunkNotLoaded)
	}
	if err := ensureSection(chunk, y); err != nil {
		s.mu.Unlock()
		return err
	}
	chunk.SetBlockState(x, y, z, stateID)
	s.mu.Unlock()

	for _, cb := range s.onBlockUpdate {
		cb(x, y, z, stateID)
	}
	return nil
}

func ensureSection(chunk *chunks.ChunkColumn, y int) error {
	idx := chunks.SectionIndex(y)
	if idx < 0 || idx >= len(chunk.Sections) {
		return fmt.Errorf("y=%d is outside the world height", y)
	}
	if chunk.Sections[idx] == nil {
		chunk.Sections[idx] = chunks.NewEmptySection()
	}
	return nil
}

// IsChunkLoaded checks if a chunk is loaded at the given chunk coordinates.
func (s *Store) IsChunkLoaded(chunkX, chunkZ int32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.Chunks[chunkKey(chunkX, chunkZ)]
	return ok
}

// GetChunk returns the chunk column at the given chunk coordinates.
func (s *Store) GetChunk(chunkX, chunkZ int32) *chunks.ChunkColumn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Chunks[chunkKey(chunkX, chunkZ)]
}

// LoadedChunkCount returns the number of loaded chunks.
func (s *Store) LoadedChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Chunks)
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Chunks = make(map[int64]*chunks.ChunkColumn)
}

// voxel predicates

// IsSolid reports whether the block at (x, y, z) has a collision shape.
// Unloaded chunks read as air.
func (s *Store) IsSolid(x, y, z int) bool {
	return HasCollision(s.GetBlock(x, y, z))
}

// IsFluid reports whether the block at (x, y, z) is water or lava.
func (s *Store) IsFluid(x, y, z int) bool {
	return IsFluid(s.GetBlock(x, y, z))
}

// FrictionUnder returns the friction coefficient of the block supporting box.
func (s *Store) FrictionUnder(box collisions.AABB) float64 {
	c := box.Center()
	return FrictionCoefficient(s.GetBlock(int(math.Floor(c[0])), int(math.Floor(box.Min[1]-0.5)), int(math.Floor(c[2]))))
}

// InsideUnloaded reports whether any column under the footprint of box is
// not loaded.
func (s *Store) InsideUnloaded(box collisions.AABB) bool {
	minX, minZ := chunks.ChunkPos(int(math.Floor(box.Min[0])), int(math.Floor(box.Min[2])))
	maxX, maxZ := chunks.ChunkPos(int(math.Floor(box.Max[0])), int(math.Floor(box.Max[2])))

	s.mu.RLock()
	defer s.mu.RUnlock()
	for cx := minX; cx <= maxX; cx++ {
		for cz := minZ; cz <= maxZ; cz++ {
			if _, ok := s.Chunks[chunkKey(cx, cz)]; !ok {
				return true
			}
		}
	}
	return false
}

// NewFlatColumn builds a chunk column filled with stateID from minY up to and
// including topY.
func NewFlatColumn(cx, cz int32, minY, topY int, stateID int32) (*chunks.ChunkColumn, error) {
	column := &chunks.ChunkColumn{X: cx, Z: cz}
	baseX, baseZ := int(cx)*16, int(cz)*16
	for y := minY; y <= topY; y++ {
		if err := ensureSection(column, y); err != nil {
			return nil, err
		}
		for x := baseX; x < baseX+16; x++ {
			for z := baseZ; z < baseZ+16; z++ {
				column.SetBlockState(x, y, z, stateID)
			}
		}
	}
	return column, nil
}
