package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/digipot.go/pkg/digipot"
	"github.com/robotalks/digipot.go/pkg/digipot/board"
	"github.com/robotalks/digipot.go/pkg/digipot/controller"
	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1"
	env "github.com/robotalks/digipot.go/pkg/l1/env/controller"
)

func init() {
	env.SetControllerType(controller.Type, l1.ControllerMeta{Description: "SPI digital potentiometer"})
	env.SetupFlags()
	digipot.SetupFlags()
	board.SetupFlags()
	controller.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	b, err := board.NewConfig().Open()
	if err != nil {
		log.Fatalln(err)
	}

	dev := digipot.NewConfig().NewDevice(b.ChipSelect)
	ctl := controller.NewConfig().NewController(env, dev, b.Transport, b.Sampler)

	err = fx.NewRunner().HandleSignals().Go(fx.NewLoop().Add(env, ctl)).Wait()
	if cerr := b.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		log.Fatalln(err)
	}
}
