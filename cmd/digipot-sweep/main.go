package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/board"
	"github.com/robotalks/digipot.go/pkg/digipot/sweep"
	fx "github.com/robotalks/digipot.go/pkg/framework"
)

var (
	once     bool
	steps    = sweep.DefaultSteps
	stepSize = uint(sweep.DefaultStepSize)
	settle   = sweep.DefaultSettle
)

func init() {
	digipot.SetupFlags()
	board.SetupFlags()
	flag.BoolVar(&once, "once", once, "Stop after one pass.")
	flag.IntVar(&steps, "steps", steps, "Number of steps per pass.")
	flag.UintVar(&stepSize, "step-size", stepSize, "Resistance increment per step.")
	flag.DurationVar(&settle, "step-settle", settle, "Delay between setting the wiper and sampling.")
}

func main() {
	flag.Parse()

	b, err := board.NewConfig().Open()
	if err != nil {
		log.Fatalln(err)
	}
	if b.Sampler == nil {
		b.Close()
		log.Fatalln("an ADC is required, use -adc or -sim")
	}

	s := sweep.New(digipot.NewConfig().NewDevice(b.ChipSelect), b.Transport, b.Sampler)
	s.Steps, s.Settle = steps, settle
	if stepSize > 0xffff {
		stepSize = 0xffff
	}
	s.StepSize = uint16(stepSize)

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.RunnableFunc(func(ctx context.Context) error {
		for {
			err := s.Run(ctx, func(smpl sweep.Sample) error {
				fmt.Printf("Step %d, Voltage: %d (%s)\n", smpl.Step, smpl.Raw, smpl.V)
				return nil
			})
			if err != nil || once {
				return err
			}
		}
	}))
	err = runner.Wait()
	if cerr := b.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		log.Fatalln(err)
	}
}
