// Copyright 2026 The blockvm Authors
// This file is part of the blockvm library.
//
// The blockvm library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The blockvm library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the blockvm library. If not, see <http://www.gnu.org/licenses/>.

package vm

import "sync"

// framePool recycles Frame values across calls within a block: every CALL,
// CREATE and the outermost Run allocates one, and a busy block can nest
// dozens of them per transaction.
var framePool = sync.Pool{
	New: func() interface{} { return new(Frame) },
}

func getFrame() *Frame {
	return framePool.Get().(*Frame)
}

func putFrame(f *Frame) {
	framePool.Put(f)
}
