package main

import (
	"context"
	"path/filepath"

	"github.com/esimov/emojiconv/emoji"
	"github.com/esimov/emojiconv/utils"
)

// getInfo runs the 'get-info' command.
func (c *cli) getInfo(ctx context.Context, args []string) int {
	fs := c.newFlagSet("get-info")
	var (
		outputPath  = fs.String("output-path", "", "The path to output the JSON file to.")
		imageDir    = fs.String("image-directory-path", "", "The path to the directory containing the emoji images.")
		registryURL = fs.String("registry-url", emoji.RegistryURL, "Location of the Unicode emoji-test registry.")
		aliasURL    = fs.String("alias-url", emoji.AliasURL, "Location of the JoyPixels emoji dataset.")
	)
	fs.MarkHidden("registry-url")
	fs.MarkHidden("alias-url")

	if code, ok := c.parseFlags(fs, args); !ok {
		return code
	}

	if *imageDir != "" && *outputPath == "" {
		c.errorf("The '--image-directory-path' option requires the '--output-path' option to be specified.")
		return exitFailure
	}

	var resolvedOutput string
	if *outputPath != "" {
		var err error
		if resolvedOutput, err = filepath.Abs(*outputPath); err != nil {
			c.errorf("%v", err)
			return exitFailure
		}
	}

	src := &emoji.Source{
		Client:      emoji.NewHTTPClient(),
		RegistryURL: *registryURL,
		AliasURL:    *aliasURL,
	}

	registry, aliases, err := c.fetch(ctx, src)
	if err != nil {
		c.errorf("%v", err)
		return exitFailure
	}

	b := &emoji.Builder{
		Aliases:    aliases,
		ImageDir:   *imageDir,
		OutputPath: resolvedOutput,
		Warnf:      c.warnf,
		Errorf:     c.errorf,
	}
	catalog, err := b.Build(registry)
	if err != nil {
		c.errorf("%v", err)
		return exitFailure
	}

	c.infof("%s", catalog.Counts())

	if resolvedOutput == "" {
		return exitOK
	}
	if err := catalog.WriteJSON(resolvedOutput); err != nil {
		c.errorf("%v", err)
		return exitFailure
	}
	c.successf("Emoji information written successfully to '%s'.", utils.RelativeToCwd(resolvedOutput))

	return exitOK
}

// fetch downloads both remote datasets while showing the progress indicator.
func (c *cli) fetch(ctx context.Context, src *emoji.Source) (string, emoji.AliasTable, error) {
	spinner := c.newSpinner("⇢ downloading emoji data...")
	if spinner != nil {
		spinner.Start()
		defer spinner.Stop()
	}

	registry, err := src.FetchRegistry(ctx)
	if err != nil {
		return "", nil, err
	}
	aliases, err := src.FetchAliases(ctx)
	if err != nil {
		return "", nil, err
	}
	return registry, aliases, nil
}
