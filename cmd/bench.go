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
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/notargets/gohp/basis"
	"github.com/notargets/gohp/element"
	"github.com/notargets/gohp/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Bench struct {
	Shape   utils.ElementType
	L       int
	Repeats int
	Workers int
	K       int // elements, split among the workers
}

// BenchCmd represents the bench command
var BenchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time backward and forward transforms on one element shape",
	Long: `
Runs Repeats pairs of backward and forward transforms on each worker and reports
the cost per pair, counted in CPU instructions where the kernel allows it.

gohp bench -s Prism -L 6 -n 1000 -w 4`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err   error
			b     = &Bench{Workers: viper.GetInt("workers")}
			shape string
		)
		shape, _ = cmd.Flags().GetString("shape")
		if b.Shape, err = utils.ParseElementType(shape); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		b.L, _ = cmd.Flags().GetInt("modes")
		b.Repeats, _ = cmd.Flags().GetInt("repeats")
		b.K, _ = cmd.Flags().GetInt("elements")
		if err = b.Run(); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(BenchCmd)
	BenchCmd.Flags().StringP("shape", "s", "Hex", "element shape: Tri, Quad, Tet, Pyramid, Prism, Hex")
	BenchCmd.Flags().IntP("modes", "L", 6, "number of modes along each edge")
	BenchCmd.Flags().IntP("repeats", "n", 100, "transform pairs per element")
	BenchCmd.Flags().IntP("elements", "k", 0, "number of elements, default one per worker")
}

// Run executes the benchmark. The elements are split among the workers,
// each worker owning a private arena.
func (b *Bench) Run() (err error) {
	var (
		ctx     = element.NewContext()
		rs      *basis.RefShape
		wg      sync.WaitGroup
		workers = max(b.Workers, 1)
		part    = utils.NewPartition(workers, max(b.K, workers))
		cost    = make([]float64, workers)
		unit    = make([]string, workers)
		errs    = make([]error, workers)
	)
	if rs, err = basis.Reference(b.Shape); err != nil {
		return
	}
	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var (
				wctx       = ctx.Worker()
				kMin, kMax = part.Range(w)
				elmts      = make([]*element.Element, 0, part.Size(w))
				rng        = rand.New(rand.NewSource(int64(w)))
			)
			for k := kMin; k < kMax; k++ {
				var e *element.Element
				if e, errs[w] = element.New(wctx, k, b.Shape, b.L, rs.Verts); errs[w] != nil {
					return
				}
				for i := range e.Modal {
					e.Modal[i] = rng.Float64() - 0.5
				}
				elmts = append(elmts, e)
			}
			cost[w], unit[w], errs[w] = measure(func() error {
				for n := 0; n < b.Repeats; n++ {
					for _, e := range elmts {
						element.Jbwd(wctx, e)
						element.Jfwd(wctx, e)
					}
				}
				return nil
			})
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)
	for w := range cost {
		if errs[w] != nil {
			return errs[w]
		}
		if n := b.Repeats * part.Size(w); n != 0 {
			fmt.Printf("worker %d: %d elements, %.4g %s per transform pair\n",
				w, part.Size(w), cost[w]/float64(n), unit[w])
		}
	}
	fmt.Printf("%v L=%d: %d elements on %d workers, %d pairs each in %v, %d mass matrices, %d geometry families\n",
		b.Shape, b.L, part.K, workers, b.Repeats, elapsed, ctx.MM.Len(), ctx.Geoms.Families())
	return
}

func wallTime(f func() error) (cost float64, unit string, err error) {
	start := time.Now()
	err = f()
	return float64(time.Since(start).Nanoseconds()), "ns", err
}
