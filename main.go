// Command ruchy-demo is the smallest possible showcase of the Driver API
// (spec §6): evaluate one hardcoded Ruchy source string and print its
// result. See cmd/ruchyc for the real standalone CLI.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ruchy-lang/ruchy/internal/compiler/driver"
)

const sample = `fun greet(name: string) -> string {
  return "Hello, " + name + "!"
}

fun main() -> string {
  return greet("Ruchy")
}`

func main() {
	d := &driver.Driver{}
	p := d.Run(sample, "hello.ruchy")
	if p.ExitCode != driver.ExitSuccess {
		log.Fatalf("compilation failed:\n%s", p.Diagnostics.String())
	}

	result, err := driver.Evaluate(context.Background(), p.Module, driver.ResourceLimits{})
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}
	fmt.Println(result.String())
}
