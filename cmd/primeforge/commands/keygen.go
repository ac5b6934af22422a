package commands

import (
	"time"

	"github.com/spf13/cobra"

	"primeforge/internal/app"
	"primeforge/internal/keypair"
	"primeforge/internal/store"
	"primeforge/internal/z5d"
)

func keygenCmd() *cobra.Command {
	var (
		bits         int
		pubExp       uint64
		seedHex      string
		seedWords    string
		bumpP        int
		bumpQ        int
		kappaStar    float64
		kappaGeo     float64
		validityDays int
		noCert       bool
		passphrase   string
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA keypair and self-signed certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("bits") {
				cfg.Bits = bits
			}
			if f.Changed("pub-exp") {
				cfg.PubExp = pubExp
			}
			if f.Changed("bump-p") {
				cfg.BumpP = bumpP
			}
			if f.Changed("bump-q") {
				cfg.BumpQ = bumpQ
			}
			if f.Changed("kappa-star") {
				cfg.KappaStar = kappaStar
			}
			if f.Changed("kappa-geo") {
				cfg.KappaGeo = kappaGeo
			}
			if f.Changed("validity-days") {
				cfg.ValidityDays = validityDays
			}
			if f.Changed("workers") {
				cfg.Workers = workers
			}

			a, err := app.New(cfg, seedHex, seedWords)
			if err != nil {
				return err
			}
			defer a.Close()

			say("=== PrimeForge RSA Key Generator ===\n\n")
			say("Configuration:\n")
			say("  Bits: %d\n", cfg.Bits)
			say("  e: %d\n", cfg.PubExp)
			say("  Validity: %d days\n", cfg.ValidityDays)
			say("  Estimator: kappa_geo=%.3f, kappa_star=%.5f, phi=%.15f\n",
				cfg.KappaGeo, cfg.KappaStar, cfg.Phi)
			say("  Bumps: p=%d, q=%d\n", cfg.BumpP, cfg.BumpQ)
			say("  Seed tag: %s\n\n", a.Seed.Tag())

			start := time.Now()
			material, err := a.Generator().Generate()
			if err != nil {
				return err
			}
			defer material.Wipe()

			hdr := store.KeyHeader{
				SeedHex:   a.Seed.Hex(),
				BumpP:     cfg.BumpP,
				BumpQ:     cfg.BumpQ,
				KappaStar: cfg.KappaStar,
				KappaGeo:  cfg.KappaGeo,
			}
			tag := a.Seed.Tag()
			key, err := material.ToCryptoKey()
			if err != nil {
				return err
			}
			keyPath, err := a.Writer.WriteKey(key, tag, hdr, passphrase)
			if err != nil {
				return err
			}
			say("Wrote private key: %s\n", keyPath)

			if !noCert {
				der, err := keypair.Certificate(material, cfg.CertParams())
				if err != nil {
					return err
				}
				certPath, err := a.Writer.WriteCert(der, tag)
				if err != nil {
					return err
				}
				say("Wrote certificate: %s\n", certPath)
			}

			say("\n=== Generation Complete ===\n")
			say("Total generation time: %d ms\n", time.Since(start).Milliseconds())
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&bits, "bits", keypair.DefaultBits, "modulus size in bits")
	f.Uint64Var(&pubExp, "pub-exp", keypair.DefaultPublicExponent, "public exponent")
	f.StringVar(&seedHex, "seed", "", "64-char hex master seed (default: fresh entropy)")
	f.StringVar(&seedWords, "seed-words", "", "BIP-39 mnemonic master seed")
	f.IntVar(&bumpP, "bump-p", keypair.DefaultBumpP, "index offset for the p estimate")
	f.IntVar(&bumpQ, "bump-q", keypair.DefaultBumpQ, "index offset for the q estimate")
	f.Float64Var(&kappaStar, "kappa-star", z5d.DefaultKappaStar, "curvature correction weight")
	f.Float64Var(&kappaGeo, "kappa-geo", z5d.DefaultKappaGeo, "geometric calibration factor")
	f.IntVar(&validityDays, "validity-days", keypair.DefaultValidityDays, "certificate validity in days")
	f.BoolVar(&noCert, "no-cert", false, "skip the self-signed certificate")
	f.StringVarP(&passphrase, "passphrase", "p", "", "encrypt the key file with a passphrase")
	f.IntVar(&workers, "workers", 0, "search workers (0 = all CPUs)")
	return cmd
}
