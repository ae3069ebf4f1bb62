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

package log

import "sync"

// Ctx is a shorthand for a map-shaped key/value context, normalized through
// toArray into the alternating key, value, key, value... form the rest of
// the package works with.
type Ctx map[string]interface{}

func (c Ctx) toArray() []interface{} {
	arr := make([]interface{}, 0, len(c)*2)
	for k, v := range c {
		arr = append(arr, k, v)
	}
	return arr
}

// normalize pads an odd-length context slice with a trailing nil value so
// every key always has a paired value, matching loose call sites like
// logger.Debug("msg", "key").
func normalize(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil)
	}
	return ctx
}

var mapPool = sync.Pool{New: func() interface{} { return make(map[string]interface{}, 8) }}

// logger is the concrete Logger. Its zero value is usable: an empty ctx
// slice logs with no bound fields.
type logger struct {
	ctx []interface{}
}

func (l *logger) New(ctx ...interface{}) Logger {
	normalized := normalize(ctx)
	combined := make([]interface{}, 0, len(l.ctx)+len(normalized))
	combined = append(combined, l.ctx...)
	combined = append(combined, normalized...)
	return &logger{ctx: combined}
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	if terminal.IsLevelEnabled(toLogrusLevel(lvl)) == false {
		return
	}

	fields := mapPool.Get().(map[string]interface{})
	defer func() {
		for k := range fields {
			delete(fields, k)
		}
		mapPool.Put(fields)
	}()

	all := normalize(append(append([]interface{}{}, l.ctx...), ctx...))
	for i := 0; i+1 < len(all); i += 2 {
		key, ok := all[i].(string)
		if !ok {
			key = "!INVALID_KEY!"
		}
		fields[key] = all[i+1]
	}

	entry := terminal.WithFields(fields)
	switch lvl {
	case LvlCrit, LvlFatal:
		entry.Error(msg) // Crit() at the package level calls os.Exit itself
	case LvlError:
		entry.Error(msg)
	case LvlWarn:
		entry.Warn(msg)
	case LvlInfo:
		entry.Info(msg)
	case LvlDebug:
		entry.Debug(msg)
	default:
		entry.Trace(msg)
	}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

// TerminalStringer is implemented by context values that want custom
// terminal rendering instead of their default %v form.
type TerminalStringer interface {
	TerminalString() string
}

var _ Logger = (*logger)(nil)
