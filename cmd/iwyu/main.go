// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The iwyu command analyzes the #include lines of C/C++ translation units
// and suggests which headers to add, remove, or replace with forward
// declarations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EngFlow/iwyu_cc/internal/engine"
)

func main() {
	opts := engine.Options{}

	rootCmd := &cobra.Command{
		Use:   "iwyu [flags] source...",
		Short: "Suggest the #include lines each source file should have",
		Long: `iwyu scans C/C++ translation units and reports, per file, which
#include lines to add, which to remove, and the full desired include list.

Exit status is 1 when any file needs changes, 2 on errors.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := engine.NewContext(opts)
			changes, err := ctx.Run(args, os.Stderr)
			if err != nil {
				return err
			}
			if changes > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringArrayVar(&opts.MappingFiles, "mapping_file", nil,
		"mapping file to load (repeatable)")
	flags.StringArrayVar(&opts.MappingFileSearchPath, "mapping_file_path", nil,
		"directory to resolve relative mapping-file names against (repeatable)")
	flags.StringArrayVar(&opts.CheckAlsoGlobs, "check_also", nil,
		"glob of additional files to report violations for (repeatable)")
	flags.StringArrayVarP(&opts.IncludeDirs, "include_dir", "I", nil,
		"include search directory (repeatable)")
	flags.StringArrayVar(&opts.SystemDirs, "system_dir", nil,
		"system include directory, /usr/include if unset (repeatable)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "iwyu: %v\n", err)
		os.Exit(2)
	}
}
