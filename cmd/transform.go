/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/notargets/gohp/InputParameters"
	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/boundary"
	"github.com/notargets/gohp/element"
	"github.com/notargets/gohp/utils"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

// TransformCmd represents the transform command
var TransformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Build one element from a YAML description and transform a field on it",
	Long: `
Builds the element, curves its faces, transforms the Field expression to modal
coefficients and back, then applies the boundary conditions over the time steps.

gohp transform -I element.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err    error
			icFile string
		)
		if icFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		ip := processTransformInput(icFile)
		ip.Print()
		if err = RunTransform(ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(TransformCmd)
	TransformCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the element, curves, field and boundary conditions")
}

func processTransformInput(icFile string) (ip *InputParameters.InputParameters) {
	var (
		err  error
		data []byte
	)
	if len(icFile) == 0 {
		fmt.Printf("error: must supply an input parameters file (-I, --inputConditionsFile)\n")
		exampleFile := `
########################################
Title: "Quarter annulus"
Shape: Quad
Order: 8
Vertices: [[0.5, 0], [1, 0], [0, 1], [0, 0.5]]
Curves:
  1: {Type: Arc, Center: [0, 0], Radius: 1}
Field: "u = sin(pi*x)*y"
BCs:
  0: {Type: V, Value: 5}
  2: {Type: v, Expr: "u = a*x*t"}
  3: {Type: Flux, Value: 1}
Parameters:
  a: 2
FinalTime: 1
Steps: 4
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if data, err = os.ReadFile(icFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	return
}

// NewElement builds the element described by ip on ctx, curved where requested.
// A singular element is reported and returned.
func NewElement(ctx *element.TransformContext, ip *InputParameters.InputParameters) (e *element.Element, err error) {
	var (
		et    utils.ElementType
		verts = ip.Verts()
		Q     [][3]int
	)
	if et, err = utils.ParseElementType(ip.Shape); err != nil {
		return
	}
	if len(verts) == 0 {
		var rs *basis.RefShape
		if rs, err = basis.Reference(et); err != nil {
			return
		}
		verts = rs.Verts
	}
	if q := ip.Q(); q != nil {
		Q = append(Q, *q)
	}
	if e, err = element.New(ctx, 0, et, ip.Order, verts, Q...); err != nil {
		if !errors.Is(err, utils.ErrSingularElement) {
			return
		}
		fmt.Printf("warning: %s\n", err.Error())
		err = nil
	}
	for _, f := range faceKeys(ip.Curves) {
		var c *element.Curve
		if c, err = parseCurve(ip.Curves[f]); err != nil {
			return
		}
		if err = element.CurvedElmt(ctx, e, f, c); err != nil {
			return
		}
	}
	return
}

func parseCurve(cp InputParameters.CurveParameters) (c *element.Curve, err error) {
	c = &element.Curve{Radius: cp.Radius}
	copy(c.Center[:], cp.Center)
	switch strings.ToLower(cp.Type) {
	case "arc", "circle":
		c.Type = element.Arc
	case "sphere":
		c.Type = element.Sphere
	case "straight", "":
		c.Type = element.Straight
	default:
		err = fmt.Errorf("unknown curve type: %q", cp.Type)
		return
	}
	if c.Type != element.Straight && c.Radius <= 0 {
		err = fmt.Errorf("curve %s needs a positive radius", cp.Type)
	}
	return
}

// NewBoundaries builds the boundary list of e from the BCs of ip at time t
func NewBoundaries(ctx *element.TransformContext, e *element.Element,
	ip *InputParameters.InputParameters, t float64) (list boundary.List, err error) {
	for _, f := range faceKeys(ip.BCs) {
		var (
			bp = ip.BCs[f]
			bt utils.BCType
		)
		if bt, err = utils.ParseBCName(bp.Type); err != nil {
			return
		}
		if len(bp.Expr) != 0 && !bt.IsFunction() {
			// an expression turns a named condition into its function form
			switch bt {
			case utils.BCValue, utils.BCFlux, utils.BCRobin:
				bt = bt - 'A' + 'a'
			default:
				err = fmt.Errorf("face %d: %v condition takes no expression", f, bt)
				return
			}
		}
		if f < 0 || f >= e.NumFaces() {
			err = fmt.Errorf("boundary on face %d, element has %d faces", f, e.NumFaces())
			return
		}
		if bt.IsFunction() {
			if _, err = boundary.NewExpression(bp.Expr, ip.Parameters); err != nil {
				return
			}
		}
		list = append(list, boundary.GenBndry(ctx, e, f, boundary.Spec{
			Type:   bt,
			Value:  bp.Value,
			Expr:   bp.Expr,
			Params: ip.Parameters,
			Alpha:  bp.Alpha,
			Depth:  ip.History,
		}, t))
	}
	return
}

// RunTransform executes one transform run described by ip
func RunTransform(ip *InputParameters.InputParameters) (err error) {
	var (
		ctx = element.NewContext()
		e   *element.Element
	)
	if e, err = NewElement(ctx, ip); err != nil {
		return
	}
	fmt.Println(e.String())
	fmt.Printf("Volume = %.12f, min J = %.6g, curved = %v, singular = %v\n",
		element.Integrate(e, utils.ConstArray(len(e.Phys), 1)), e.Geom.MinJ, e.IsCurved(), e.Geom.Singular)
	if len(ip.Field) != 0 {
		var ex *boundary.Expression
		if ex, err = boundary.NewExpression(ip.Field, ip.Parameters); err != nil {
			return
		}
		if err = ex.Sample(element.Coord(ctx, e), 0, e.Phys); err != nil {
			return
		}
		u := make([]float64, len(e.Phys))
		copy(u, e.Phys)
		element.Jfwd(ctx, e)
		element.Jbwd(ctx, e)
		fmt.Printf("%s: integral = %.12f, projection error = %.3g, |c| = %.6g\n", ex.Name,
			element.Integrate(e, u), utils.MaxAbsDiff(u, e.Phys), floats.Norm(e.Modal, 2))
	}
	if len(ip.BCs) == 0 {
		return
	}
	var list boundary.List
	if list, err = NewBoundaries(ctx, e, ip, 0); err != nil {
		return
	}
	var (
		steps = max(ip.Steps, 1)
		dt    = ip.FinalTime / float64(steps)
		flux  = make([]float64, e.Nmodes)
	)
	for n := 0; n <= steps; n++ {
		t := float64(n) * dt
		if n != 0 {
			for _, b := range list {
				if err = boundary.UpdateBndry(ctx, b, t, true); err != nil {
					return
				}
			}
		}
		e.Zero()
		boundary.SetBCs(e, list)
		for i := range flux {
			flux[i] = 0
		}
		boundary.AddFluxTerms(e, list, flux)
		fmt.Printf("t = %8.5f:", t)
		for _, b := range list {
			fmt.Printf(" [%d %v %.6g]", b.Face, b.Type, faceSummary(b))
		}
		fmt.Printf(" |flux| = %.6g\n", floats.Norm(flux, 2))
	}
	fmt.Printf("%d mass matrices, %d geometry families\n", ctx.MM.Len(), ctx.Geoms.Families())
	return
}

// faceSummary is the mean of the prescribed face data
func faceSummary(b *boundary.Bndry) float64 {
	if len(b.Phys) == 0 {
		return math.NaN()
	}
	return floats.Sum(b.Phys) / float64(len(b.Phys))
}

func faceKeys[T any](m map[int]T) (keys []int) {
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return
}
