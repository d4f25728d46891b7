package basis

import (
	"fmt"
	"math"
	"sync"

	"github.com/notargets/gohp/utils"
)

// Trace relates the element modes that are non-zero on one face to the modes
// of the face expansion: trace(Elem[i]) = Sign[i] * facemode(FMode[i]).
type Trace struct {
	Face  int
	FType utils.ElementType
	Elem  []int
	FMode []int
	Sign  []float64
	// T gathers face expansion coefficients from element coefficients, NFmodes x Nmodes
	T utils.CSR
	// FaceOf[m] is the index into Elem of element mode m, -1 when m vanishes on the face
	FaceOf []int
}

var (
	traceMu    sync.Mutex
	traceCache = map[[2]int][]Trace{}
)

// Traces returns the trace maps of every face of the expansion. They are
// computed numerically once per (type, L) by sampling the element modes on
// the face quadrature grid; an element mode whose trace is not a face mode
// up to sign is a construction error.
func (b *Basis) Traces() []Trace {
	b.traceOnce.Do(func() {
		key := [2]int{int(b.Type), b.L}
		traceMu.Lock()
		defer traceMu.Unlock()
		if tr, ok := traceCache[key]; ok {
			b.traces = tr
			return
		}
		rs := refShapes[b.Type]
		b.traces = make([]Trace, len(rs.Faces))
		for f := range rs.Faces {
			b.traces[f] = b.faceTrace(rs, f)
		}
		traceCache[key] = b.traces
	})
	return b.traces
}

func (b *Basis) faceTrace(rs *RefShape, f int) (tr Trace) {
	var (
		ft     = rs.Faces[f].Type
		fb, _  = NewTable(ft, b.L, DefaultQ(ft, b.L))
		Nm     = b.Nmodes()
		Nf     = fb.Nmodes()
		trace  = make([]float64, fb.Npts)
		used   = make([]bool, Nf)
		maxAbs = func(d []float64) (m float64) {
			for _, v := range d {
				m = math.Max(m, math.Abs(v))
			}
			return
		}
	)
	tr = Trace{Face: f, FType: ft, FaceOf: make([]int, Nm)}
	dok := utils.NewDOK(Nf, Nm)
	for m := 0; m < Nm; m++ {
		tr.FaceOf[m] = -1
		for ind, xi := range fb.Xi {
			abc := Collapse(b.Type, rs.FaceToElement(f, xi[0], xi[1]))
			trace[ind] = b.Modes[m].Eval(abc[0], abc[1], abc[2])
		}
		scale := maxAbs(trace)
		if scale < 1.e-12 {
			continue
		}
		tol := 1.e-9 * math.Max(1, scale)
		found := false
		for n := 0; n < Nf && !found; n++ {
			if used[n] {
				continue
			}
			fm := fb.B.Row(n)
			for _, sign := range []float64{1, -1} {
				var diff float64
				for ind := range trace {
					diff = math.Max(diff, math.Abs(trace[ind]-sign*fm[ind]))
				}
				if diff < tol {
					used[n], found = true, true
					tr.FaceOf[m] = len(tr.Elem)
					tr.Elem = append(tr.Elem, m)
					tr.FMode = append(tr.FMode, n)
					tr.Sign = append(tr.Sign, sign)
					dok.Set(n, m, sign)
					break
				}
			}
		}
		if !found {
			panic(fmt.Errorf("%v L=%d: trace of mode %d (%v %d) on face %d is not a face mode",
				b.Type, b.L, m, b.Modes[m].Kind, b.Modes[m].Entity, f))
		}
	}
	if len(tr.Elem) != Nf {
		panic(fmt.Errorf("%v L=%d: face %d has %d traced modes, face expansion has %d",
			b.Type, b.L, f, len(tr.Elem), Nf))
	}
	tr.T = dok.ToCSR()
	return
}

// Gather extracts the face expansion coefficients of face f from element coefficients
func (tr *Trace) Gather(c []float64, out ...[]float64) (fc []float64) {
	if len(out) != 0 {
		fc = out[0]
	} else {
		fc = make([]float64, len(tr.Elem))
	}
	for i, m := range tr.Elem {
		fc[tr.FMode[i]] = tr.Sign[i] * c[m]
	}
	return
}

// Scatter assigns face expansion coefficients to the element modes of the face
func (tr *Trace) Scatter(fc, c []float64) {
	for i, m := range tr.Elem {
		c[m] = tr.Sign[i] * fc[tr.FMode[i]]
	}
}
