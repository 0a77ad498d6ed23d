// Package controller sets up the env a device controller runs in: how it
// is identified and which registrars publish it.
package controller

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	fx "github.com/robotalks/digipot.go/pkg/framework"
	"github.com/robotalks/digipot.go/pkg/l1"
	"github.com/robotalks/digipot.go/pkg/l1/comm"
	"github.com/robotalks/digipot.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/digipot.go/pkg/l1/comm/stream"
	"github.com/robotalks/digipot.go/pkg/l1/comm/websocket"
	"github.com/robotalks/digipot.go/pkg/l1/env"
)

// Config provides common options to setup an env for controllers.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// ListenURLs are direct listeners, tcp://[host]:port or ws://[host]:port.
	ListenURLs []string
}

// DefaultMQTTBrokerURL is used unless overridden by DIGIPOT_MQTT_URL.
const DefaultMQTTBrokerURL = "mqtt://localhost:1883/digipot/"

var defaultConfig = Config{
	MQTTBrokerURL: DefaultMQTTBrokerURL,
}

func init() {
	if val, ok := os.LookupEnv("DIGIPOT_MQTT_URL"); ok {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("DIGIPOT_LISTEN"); val != "" {
		defaultConfig.ListenURLs = strings.Split(val, ",")
	}
	defaultConfig.Info.Ref.ID = env.MachineID("digipot")
	if val := os.Getenv("DIGIPOT_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	}
}

type urlList struct {
	urls *[]string
}

func (l urlList) String() string {
	if l.urls == nil {
		return ""
	}
	return strings.Join(*l.urls, ",")
}

func (l urlList) Set(val string) error {
	*l.urls = append(*l.urls, val)
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type.")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID.")
	flag.StringVar(&defaultConfig.Info.Meta.Description, "desc", defaultConfig.Info.Meta.Description, "Controller description.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable.")
	flag.Var(urlList{&defaultConfig.ListenURLs}, "listen", "Serve clients directly on tcp://[host]:port or ws://[host]:port, repeatable.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the controller.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the env for controllers.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.ListenURLs = append([]string(nil), defaultConfig.ListenURLs...)
	return &conf
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	e := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if len(c.ListenURLs) > 0 {
		direct := &directRegistrar{Hub: comm.NewHub(c.Info)}
		for _, listenURL := range c.ListenURLs {
			srv, err := listen(listenURL, direct.Hub)
			if err != nil {
				return nil, fmt.Errorf("listen %s error: %v", listenURL, err)
			}
			direct.servers = append(direct.servers, srv)
			e.RegistryURLs = append(e.RegistryURLs, listenURL)
		}
		e.Registrar.Add(direct)
	}
	if len(e.Registrar.Registrars) == 0 {
		return nil, fmt.Errorf("at least one registrar is required")
	}
	return e, nil
}

func listen(listenURL string, hub *comm.Hub) (fx.LoopAdder, error) {
	u, err := url.Parse(listenURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "tcp":
		return stream.Listen(u.Host, hub)
	case "ws":
		return websocket.Listen(u.Host, hub)
	default:
		return nil, fmt.Errorf("unknown scheme %q", u.Scheme)
	}
}

// directRegistrar publishes through all direct servers. The servers share
// one Hub so each connection gets an event once.
type directRegistrar struct {
	*comm.Hub
	servers []fx.LoopAdder
}

func (r *directRegistrar) AddToLoop(l *fx.Loop) {
	for _, srv := range r.servers {
		l.Add(srv)
	}
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
