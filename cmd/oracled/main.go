// Package main implements the oracled binary, a local node running the price
// oracle contract on a bbolt database.
//
//	oracled --config ~/.oracled init --chain-id oracle-1 --prefix oracle
//	oracled --config ~/.oracled oracle instantiate --sender oracle1... --admin oracle1...
//	oracled --config ~/.oracled oracle set-price --sender oracle1... --value 1.23
//	oracled --config ~/.oracled block next --duration 1m
//	oracled --config ~/.oracled oracle query price
//	oracled --config ~/.oracled serve --listen 127.0.0.1:8080
//
// The log level is set with the LLVL environment variable.
package main

import (
	"fmt"
	"io"
	"os"

	"go.dedis.ch/oracle/cli/node"
	oracle "go.dedis.ch/oracle/contracts/simpleoracle/controller"
	host "go.dedis.ch/oracle/core/host/controller"
	db "go.dedis.ch/oracle/core/store/kv/controller"
	proxy "go.dedis.ch/oracle/proxy/http/controller"
)

func main() {
	err := run(os.Args, nil, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string, sigs chan os.Signal, out io.Writer) error {
	builder := node.NewBuilderWithCfg("oracled", sigs, out,
		db.NewMinimal(),
		host.NewController(),
		proxy.NewController(),
		oracle.NewController(),
	)

	return builder.Build().Run(args)
}
