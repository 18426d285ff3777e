// Command bringup-probe waits on a host serial port for the boot banner the
// board firmware prints once bring-up completes, and reports the clock
// summary it carries.
//
//	bringup-probe -port /dev/ttyACM0 -baud 9600 -wait 5s
//	bringup-probe -list
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"bringup-go/errcode"

	"go.bug.st/serial"
)

func main() {
	name := flag.String("port", "/dev/ttyACM0", "serial device")
	baud := flag.Int("baud", 9600, "baud rate")
	wait := flag.Duration("wait", 5*time.Second, "how long to wait for the banner")
	list := flag.Bool("list", false, "list serial ports and exit")
	verbose := flag.Bool("v", false, "echo lines received before the banner")
	flag.Parse()

	if *list {
		ports, err := serial.GetPortsList()
		if err != nil {
			fail(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	port, err := serial.Open(*name, &serial.Mode{BaudRate: *baud})
	if err != nil {
		fail(err)
	}
	defer port.Close()
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		fail(err)
	}

	var skip func(string)
	if *verbose {
		skip = func(s string) { fmt.Println("  ", s) }
	}
	line, err := waitBanner(port, time.Now().Add(*wait), time.Now, skip)
	if err != nil {
		port.Close()
		fail(err)
	}
	fmt.Println(line)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "bringup-probe: %v\n", err)
	if errcode.Is(err, errcode.Timeout) {
		os.Exit(2)
	}
	os.Exit(1)
}
