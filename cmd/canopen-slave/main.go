package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	gocan "github.com/canopenio/gocanopen/pkg/can"
	"github.com/canopenio/gocanopen/pkg/node"
	log "github.com/sirupsen/logrus"
)

const (
	defaultInterface = "virtual"
	defaultNodeId    = 0x20
	defaultTickMs    = 1
)

func main() {
	log.SetLevel(log.DebugLevel)

	interfaceName := flag.String("i", defaultInterface, "CAN interface: a socketcan name (e.g. can0) or \"virtual\" for an isolated loopback bus")
	nodeId := flag.Int("n", defaultNodeId, "node id")
	edsPath := flag.String("p", "", "EDS file path")
	tickMs := flag.Int("t", defaultTickMs, "event_timer_callback period in milliseconds")
	flag.Parse()

	if *edsPath == "" {
		fmt.Println("missing required -p <eds file path>")
		os.Exit(1)
	}

	transport, err := openTransport(*interfaceName)
	if err != nil {
		fmt.Printf("could not open interface %v: %v\n", *interfaceName, err)
		os.Exit(1)
	}

	edsFile, err := os.Open(*edsPath)
	if err != nil {
		fmt.Printf("could not open EDS file %v: %v\n", *edsPath, err)
		os.Exit(1)
	}
	defer edsFile.Close()

	n, err := node.NewFromEDS(edsFile, uint8(*nodeId), transport, nil)
	if err != nil {
		fmt.Printf("failed to build node from EDS: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(log.Fields{"node_id": *nodeId, "interface": *interfaceName}).Info("node ready")

	ticker := time.NewTicker(time.Duration(*tickMs) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		n.ProcessOneFrame()
		n.EventTimerCallback()
	}
}

// openTransport resolves the -i flag to a Transport: "virtual" opens an
// isolated single-endpoint loopback bus (useful for a smoke test with no
// real interface attached), anything else is handed to brutella/can as a
// socketcan interface name.
func openTransport(interfaceName string) (gocan.Transport, error) {
	if interfaceName == "virtual" {
		return gocan.NewBus().Endpoint(false), nil
	}
	return gocan.NewSocketcanTransport(interfaceName)
}
