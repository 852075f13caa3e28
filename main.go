/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Marcel-mosha/task-manager/cmd"

func main() {
	cmd.Execute()
}
