package mib

import "strconv"

// AddInt stages an INTEGER entry.
func AddInt(w Writer, suffix string, v int64) {
	w.Upsert(suffix, TypeInteger, strconv.FormatInt(v, 10))
}

// AddString stages a STRING entry.
func AddString(w Writer, suffix, v string) {
	w.Upsert(suffix, TypeString, v)
}

// AddCounter stages a Counter32 entry.
func AddCounter(w Writer, suffix string, v uint32) {
	w.Upsert(suffix, TypeCounter, strconv.FormatUint(uint64(v), 10))
}

// AddGauge stages a GAUGE entry.
func AddGauge(w Writer, suffix string, v uint32) {
	w.Upsert(suffix, TypeGauge, strconv.FormatUint(uint64(v), 10))
}
