package oodle1

import "fmt"

// one is 1.0 in the symbol layer's fixed point.
const one = 0x4000

// symbolCoder is one adaptive coder instance. A decompressor owns hundreds
// of them, all structurally identical; they differ only in alphabet size
// and the effective alphabet passed per decode call.
//
// Slot 0 is the escape channel: it never holds a real symbol and is decoded
// when the stream either picks a probationary symbol or introduces a new
// one. Slots (highestNormalized, highestLearned] are the probationary band,
// decoded equiprobably because they have no assigned weight yet.
type symbolCoder struct {
	usedSymbols uint32

	symbols     []uint16
	weights     []uint16
	occurrences []uint16

	total             uint32
	highestLearned    uint32
	highestNormalized uint32

	nextRenorm     uint32
	decayThreshold uint32
	rapidInterval  uint32
	renormInterval uint32
}

func newSymbolCoder(alphabetSize, uniqueSymbols uint32) symbolCoder {
	c := symbolCoder{
		usedSymbols: uniqueSymbols,

		symbols:     make([]uint16, alphabetSize+2),
		weights:     make([]uint16, alphabetSize+2),
		occurrences: make([]uint16, alphabetSize+2),
	}

	for i := range c.weights {
		c.weights[i] = one
	}
	c.weights[0] = 0

	c.occurrences[0] = 4
	c.total = 4

	c.nextRenorm = 8
	c.rapidInterval = 4

	c.decayThreshold = (alphabetSize - 1) * 32
	if c.decayThreshold > 15160 {
		c.decayThreshold = 15160
	}
	if c.decayThreshold < 256 {
		c.decayThreshold = 256
	}

	c.renormInterval = (alphabetSize - 1) * 2
	if c.renormInterval > c.decayThreshold/2-32 {
		c.renormInterval = c.decayThreshold/2 - 32
	}
	if c.renormInterval < 128 {
		c.renormInterval = 128
	}

	return c
}

func (c *symbolCoder) decode(bs *Bitstream, alphabetSize uint32) (uint32, error) {
	if c.total >= c.nextRenorm {
		if c.total >= c.decayThreshold {
			c.decay()
		}
		c.renormalize()
	}

	z, err := bs.Peek(one)
	if err != nil {
		return 0, err
	}

	var idx uint32
	for idx = 0; idx <= c.highestNormalized; idx++ {
		if uint32(c.weights[idx+1]) > z {
			break
		}
	}

	bs.Consume(uint32(c.weights[idx]), uint32(c.weights[idx+1])-uint32(c.weights[idx]), one)
	c.occurrences[idx]++
	c.total++

	if idx != 0 {
		return uint32(c.symbols[idx]), nil
	}

	if c.highestLearned != c.highestNormalized {
		b, err := bs.Get(2)
		if err != nil {
			return 0, err
		}

		if b != 0 {
			sel, err := bs.Get(c.highestLearned - c.highestNormalized)
			if err != nil {
				return 0, err
			}

			idx = sel + c.highestNormalized + 1
			c.occurrences[idx] += 2
			c.total += 2

			return uint32(c.symbols[idx]), nil
		}
	}

	if c.highestLearned >= c.usedSymbols || c.highestLearned+2 >= uint32(len(c.symbols)) {
		return 0, fmt.Errorf("%w: %d symbols learned", ErrAlphabetExhausted, c.highestLearned)
	}

	c.highestLearned++

	symbol, err := bs.Get(alphabetSize)
	if err != nil {
		return 0, err
	}

	c.symbols[c.highestLearned] = uint16(symbol)
	c.occurrences[c.highestLearned] += 2
	c.total += 2

	if c.highestLearned == c.usedSymbols {
		// The alphabet is complete; the escape slot is retired.
		c.total -= uint32(c.occurrences[0])
		c.occurrences[0] = 0
	}

	return symbol, nil
}

// decay halves every occurrence count and evicts symbols that have fallen
// to one or less, compacting the tail into the vacated slots. The most
// frequent survivor is swapped to the tail so it outlives later evictions.
func (c *symbolCoder) decay() {
	c.occurrences[0] /= 2
	c.total = uint32(c.occurrences[0])

	var highestWeight, highestIndex uint32

	for idx := uint32(1); idx <= c.highestLearned; idx++ {
		for c.occurrences[idx] <= 1 {
			if idx >= c.highestLearned {
				c.occurrences[idx] = 0
				c.highestLearned--

				break
			}

			c.occurrences[idx] = c.occurrences[c.highestLearned]
			c.occurrences[c.highestLearned] = 0
			c.symbols[idx] = c.symbols[c.highestLearned]
			c.highestLearned--
		}

		if c.occurrences[idx] == 0 {
			break
		}

		c.occurrences[idx] /= 2
		c.total += uint32(c.occurrences[idx])

		if uint32(c.occurrences[idx]) > highestWeight {
			highestWeight = uint32(c.occurrences[idx])
			highestIndex = idx
		}
	}

	if highestWeight != 0 && highestIndex != c.highestLearned {
		c.occurrences[c.highestLearned], c.occurrences[highestIndex] =
			c.occurrences[highestIndex], c.occurrences[c.highestLearned]
		c.symbols[c.highestLearned], c.symbols[highestIndex] =
			c.symbols[highestIndex], c.symbols[c.highestLearned]
	}

	if c.highestLearned != c.usedSymbols && c.occurrences[0] == 0 {
		c.occurrences[0] = 1
		c.total++
	}

	for i := c.highestLearned + 1; i < uint32(len(c.weights)); i++ {
		c.weights[i] = one
	}
}

// renormalize apportions [0, one) across the learned symbols proportional
// to their occurrences and promotes the probationary band. The quantum is
// computed over 0x20000 with a final divide by 8 to keep precision through
// the truncating divisions.
func (c *symbolCoder) renormalize() {
	quanta := uint32(0x20000) / c.total

	c.weights[0] = 0
	acc := (uint32(c.occurrences[0]) * quanta) / 8

	for idx := uint32(1); idx <= c.highestLearned; idx++ {
		c.weights[idx] = uint16(acc)
		acc += (uint32(c.occurrences[idx]) * quanta) / 8
	}

	if c.rapidInterval*2 < c.renormInterval {
		c.rapidInterval *= 2
		c.nextRenorm = c.total + c.rapidInterval
	} else {
		c.nextRenorm = c.total + c.renormInterval
	}

	c.highestNormalized = c.highestLearned

	for i := c.highestLearned + 1; i < uint32(len(c.weights)); i++ {
		c.weights[i] = one
	}
}
