// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-jvms/classfile"
)

var (
	all        bool
	verbose    bool
	pool       bool
	fields     bool
	methods    bool
	code       bool
	attributes bool
	fastMode   bool
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func dumpClass(filename string, cmd *cobra.Command) {
	log.Printf("processing %s", filename)

	cf, err := classfile.NewFromFile(filename, &classfile.Options{Fast: fastMode})
	if err != nil {
		log.Printf("error opening %s: %v", filename, err)
		return
	}
	defer cf.Close()

	wantPool, _ := cmd.Flags().GetBool("pool")
	if wantPool || all {
		b, _ := json.Marshal(cf.ConstantPool)
		fmt.Println(prettyPrint(b))
	}
	wantFields, _ := cmd.Flags().GetBool("fields")
	if wantFields || all {
		b, _ := json.Marshal(cf.Fields)
		fmt.Println(prettyPrint(b))
	}
	wantMethods, _ := cmd.Flags().GetBool("methods")
	if wantMethods || all {
		b, _ := json.Marshal(cf.Methods)
		fmt.Println(prettyPrint(b))
	}
	wantCode, _ := cmd.Flags().GetBool("code")
	if wantCode || all {
		for _, m := range cf.Methods {
			if c, ok := m.Code(); ok {
				b, _ := json.Marshal(c)
				fmt.Println(prettyPrint(b))
			}
		}
	}
	wantAttributes, _ := cmd.Flags().GetBool("attributes")
	if wantAttributes || all {
		b, _ := json.Marshal(cf.Attributes)
		fmt.Println(prettyPrint(b))
	}
}

func verifyClass(filename string) error {
	cf, err := classfile.NewFromFile(filename, &classfile.Options{Fast: true})
	if err != nil {
		return err
	}
	defer cf.Close()
	return classfile.Verify(cf, &classfile.Options{})
}

func walk(path string, visit func(string)) {
	if !isDirectory(path) {
		visit(path)
		return
	}
	var files []string
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	for _, f := range files {
		visit(f)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "classdump",
		Short: "A JVM class-file codec and structural verifier",
		Long:  "classdump reads, verifies and dumps the structure of JVM .class files",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("classdump 0.1.0")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump <path>",
		Short: "Dumps the structure of a class file or a directory of class files",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			walk(args[0], func(f string) { dumpClass(f, cmd) })
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <path>",
		Short: "Runs the structural verifier against a class file or a directory of class files",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			failed := false
			walk(args[0], func(f string) {
				if err := verifyClass(f); err != nil {
					fmt.Printf("%s: FAIL: %v\n", f, err)
					failed = true
				} else {
					fmt.Printf("%s: OK\n", f)
				}
			})
			if failed {
				os.Exit(1)
			}
		},
	}

	rootCmd.AddCommand(versionCmd, dumpCmd, verifyCmd)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	dumpCmd.Flags().BoolVarP(&pool, "pool", "", false, "dump the constant pool")
	dumpCmd.Flags().BoolVarP(&fields, "fields", "", false, "dump fields")
	dumpCmd.Flags().BoolVarP(&methods, "methods", "", false, "dump methods")
	dumpCmd.Flags().BoolVarP(&code, "code", "", false, "dump method bytecode")
	dumpCmd.Flags().BoolVarP(&attributes, "attributes", "", false, "dump class-level attributes")
	dumpCmd.Flags().BoolVarP(&all, "all", "", false, "dump everything")
	dumpCmd.Flags().BoolVarP(&fastMode, "fast", "", false, "skip the structural verifier pass")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
