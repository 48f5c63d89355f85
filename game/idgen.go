package game

import (
	"math/rand/v2"
	"sync"
)

const (
	ROOM_CODE_ALPHABET = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ROOM_CODE_LENGTH   = 6
)

// RoomCodeGenerator hands out short room codes that stay unique until they
// are disposed.
type RoomCodeGenerator struct {
	locker sync.Mutex
	issued map[string]struct{}
	rng    *rand.Rand
}

func NewRoomCodeGenerator(rng *rand.Rand) *RoomCodeGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RoomCodeGenerator{
		issued: make(map[string]struct{}),
		rng:    rng,
	}
}

func (g *RoomCodeGenerator) Generate() string {
	g.locker.Lock()
	defer g.locker.Unlock()

	code := make([]byte, ROOM_CODE_LENGTH)
	for {
		for i := range code {
			code[i] = ROOM_CODE_ALPHABET[g.rng.IntN(len(ROOM_CODE_ALPHABET))]
		}
		id := string(code)
		if _, taken := g.issued[id]; !taken {
			g.issued[id] = struct{}{}
			return id
		}
	}
}

func (g *RoomCodeGenerator) Dispose(id string) {
	g.locker.Lock()
	delete(g.issued, id)
	g.locker.Unlock()
}
