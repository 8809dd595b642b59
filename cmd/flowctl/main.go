// flowctl 检查和运行 YAML 定义的组合。
//
//	flowctl validate greet.yaml
//	flowctl inspect greet.yaml
//	flowctl run greet.yaml --args '{"name":"Ann"}' --verbose
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
