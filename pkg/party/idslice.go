package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a sorted set of participant IDs. The index of an ID in the slice
// is the slot used for that participant by the rounds and the message tables.
type IDSlice []ID

// NewIDSlice returns a sorted copy of partyIDs.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := IDSlice(append([]ID(nil), partyIDs...))
	ids.sort()
	return ids
}

// Contains returns true if partyIDs contains all of ids.
func (partyIDs IDSlice) Contains(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := partyIDs.search(id); !ok {
			return false
		}
	}
	return true
}

// Valid returns true if the IDSlice is sorted, contains no duplicates and no empty ID.
func (partyIDs IDSlice) Valid() bool {
	for i, id := range partyIDs {
		if id == "" {
			return false
		}
		if i > 0 && partyIDs[i-1] >= id {
			return false
		}
	}
	return true
}

// GetIndex returns the index of id in partyIDs.
// If no index was found, return -1.
func (partyIDs IDSlice) GetIndex(id ID) int {
	if idx, ok := partyIDs.search(id); ok {
		return idx
	}
	return -1
}

// Remove returns a new sorted IDSlice from partyIDs with id removed.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	newPartyIDs := make(IDSlice, 0, len(partyIDs))
	for _, partyID := range partyIDs {
		if partyID != id {
			newPartyIDs = append(newPartyIDs, partyID)
		}
	}
	return newPartyIDs
}

// Copy returns an identical copy of the received.
func (partyIDs IDSlice) Copy() IDSlice {
	a := make(IDSlice, len(partyIDs))
	copy(a, partyIDs)
	return a
}

// Equal returns true if both slices hold the same IDs in the same order.
func (partyIDs IDSlice) Equal(other IDSlice) bool {
	if len(partyIDs) != len(other) {
		return false
	}
	for i := range partyIDs {
		if partyIDs[i] != other[i] {
			return false
		}
	}
	return true
}

func (partyIDs IDSlice) sort() {
	sort.Slice(partyIDs, func(i, j int) bool { return partyIDs[i] < partyIDs[j] })
}

func (partyIDs IDSlice) search(x ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= x })
	if index >= 0 && index < len(partyIDs) && partyIDs[index] == x {
		return index, true
	}
	return 0, false
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
// Every ID is length prefixed.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, uint64(len(partyIDs))); err != nil {
		return 0, err
	}
	nAll := int64(8)
	for _, id := range partyIDs {
		if err := binary.Write(w, binary.BigEndian, uint32(len(id))); err != nil {
			return nAll, err
		}
		nAll += 4
		n, err := w.Write([]byte(id))
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (IDSlice) Domain() string {
	return "IDSlice"
}
