package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"nostrich/agent"
	"nostrich/engine/actors"
	"nostrich/engine/library"
	"nostrich/messaging/relays"
	"nostrich/payments"
)

func main() {
	// Various aspects of this application require global and local settings.
	// To keep things clean and tidy we put these settings in a Viper
	// configuration.
	conf := viper.New()

	// Now we initialise this configuration with basic settings that are
	// required on startup.
	actors.InitConfig(conf)
	// make the config accessible globally
	actors.SetConfig(conf)

	pool := relays.NewPool(conf.GetStringSlice("relays"), conf.GetDuration("staleAfter"))

	var settler payments.Settler = payments.NoSettler{}
	if uri := conf.GetString("nwcURI"); len(uri) > 0 {
		wc, err := payments.ParseWalletConnectURI(uri)
		if err != nil {
			library.LogCLI("could not parse nwcURI: "+err.Error(), 1)
		} else {
			wc.MaxSats = conf.GetInt64("maxInvoiceSats")
			wc.Wait = conf.GetDuration("settleWait")
			settler = wc
		}
	}

	a := agent.New(conf, pool, settler)
	stop, err := a.Start()
	if err != nil {
		library.LogCLI(err.Error(), 1)
		return
	}
	// the shutdown path runs even if something below blows up, so queued
	// payments are drained before exit
	defer func() {
		stop()
		fmt.Println(library.Bye())
	}()

	interrupt := make(chan struct{})
	go cliListener(interrupt, a)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-signals:
	case <-interrupt:
	case <-actors.GetTerminateChan():
	}
}
