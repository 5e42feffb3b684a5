package main

import (
	"log"

	"github.com/danmuck/edgerealm/internal/config"
	"github.com/spf13/pflag"
)

func main() {
	output := pflag.StringP("output", "o", "cmd/realmctl/realm.toml", "output path; the extension picks the format")
	validate := pflag.Bool("validate", false, "validate an existing descriptor instead of writing one")
	input := pflag.StringP("input", "i", "cmd/realmctl/ex.realm.toml", "descriptor path for validation")
	force := pflag.Bool("force", false, "overwrite existing descriptor")
	pflag.Parse()

	if *validate {
		desc, err := config.LoadDescriptor(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated realm %q (%s) at %s", desc.Name, desc.BindAddress(), *input)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote realm descriptor template to %s", *output)
}
