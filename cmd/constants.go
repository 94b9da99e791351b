package cmd

import "github.com/crytic/abiharness/config"

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "abiharness.json"

// DefaultCompilationPlatform describes the default compilation platform to use if one is not provided
const DefaultCompilationPlatform = config.DefaultPlatform

// TargetFlagDescription describes the flag description for the target flag
const TargetFlagDescription = "module directory the generated bindings are compiled from"
