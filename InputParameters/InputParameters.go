package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

type CurveParameters struct {
	Type   string    `yaml:"Type"` // Arc, Sphere
	Center []float64 `yaml:"Center"`
	Radius float64   `yaml:"Radius"`
}

type BCParameters struct {
	Type  string  `yaml:"Type"` // single letter tag or name, e.g. V, v, Wall, Flux, Robin
	Value float64 `yaml:"Value"`
	Expr  string  `yaml:"Expr"`
	Alpha float64 `yaml:"Alpha"`
}

// Parameters of one element transform run, obtained from the YAML input file
type InputParameters struct {
	Title      string                  `yaml:"Title"`
	Shape      string                  `yaml:"Shape"`
	Order      int                     `yaml:"Order"` // modes per edge
	Quadrature []int                   `yaml:"Quadrature"`
	Vertices   [][]float64             `yaml:"Vertices"`
	Curves     map[int]CurveParameters `yaml:"Curves"` // keyed by face (edge in 2D) number
	BCs        map[int]BCParameters    `yaml:"BCs"`    // keyed by face (edge in 2D) number
	Field      string                  `yaml:"Field"`  // "u = f(x,y,z)" sampled and transformed
	Parameters map[string]float64      `yaml:"Parameters"`
	FinalTime  float64                 `yaml:"FinalTime"`
	Steps      int                     `yaml:"Steps"`
	History    int                     `yaml:"History"`
}

func (ip *InputParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	if ip.Order < 2 {
		err = fmt.Errorf("Order must be at least 2, have %d", ip.Order)
		return
	}
	for i, v := range ip.Vertices {
		if len(v) < 2 || len(v) > 3 {
			err = fmt.Errorf("vertex %d has %d coordinates", i, len(v))
			return
		}
	}
	return
}

// Verts returns the vertices padded to three coordinates
func (ip *InputParameters) Verts() (verts [][3]float64) {
	verts = make([][3]float64, len(ip.Vertices))
	for i, v := range ip.Vertices {
		copy(verts[i][:], v)
	}
	return
}

// Q returns the quadrature sizes, nil when the default is used
func (ip *InputParameters) Q() (Q *[3]int) {
	if len(ip.Quadrature) == 0 {
		return nil
	}
	Q = &[3]int{1, 1, 1}
	copy(Q[:], ip.Quadrature)
	return
}

func sortedKeys[T any](m map[int]T) (keys []int) {
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Shape\n", ip.Shape)
	fmt.Printf("[%d]\t\t\t\t= Order\n", ip.Order)
	if len(ip.Quadrature) != 0 {
		fmt.Printf("%v\t\t\t= Quadrature\n", ip.Quadrature)
	}
	for i, v := range ip.Vertices {
		fmt.Printf("Vertex[%d] = %v\n", i, v)
	}
	for _, f := range sortedKeys(ip.Curves) {
		fmt.Printf("Curves[%d] = %+v\n", f, ip.Curves[f])
	}
	for _, f := range sortedKeys(ip.BCs) {
		fmt.Printf("BCs[%d] = %+v\n", f, ip.BCs[f])
	}
	if len(ip.Field) != 0 {
		fmt.Printf("\"%s\"\t= Field\n", ip.Field)
	}
	names := make([]string, 0, len(ip.Parameters))
	for k := range ip.Parameters {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("%8.5f\t\t= %s\n", ip.Parameters[k], k)
	}
	if ip.Steps != 0 {
		fmt.Printf("%8.5f\t\t= FinalTime, %d steps\n", ip.FinalTime, ip.Steps)
	}
}
