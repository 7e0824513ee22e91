package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"contactdb/pkg/client"
	"contactdb/pkg/common"
	"contactdb/pkg/core"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	benchSizes []int
	benchSeed  int64

	protoHTTP string
	protoTCP  string
	protoN    int
)

var (
	surnames   = []rune("张王李赵刘周徐孙马何")
	givenNames = []rune("三四五六七八九十明强")
)

func init() {
	bench := &cobra.Command{
		Use:   "bench",
		Short: "Compare prefix-tree and linear-scan search",
		Long: `Generates random contacts and times imports plus the queries
FIND_NAME 张 and FIND_PHONE 138, once with both prefix trees enabled and
once with both disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runIndexBench(cmd.OutOrStdout(), benchSizes, benchSeed)
			return nil
		},
	}
	bench.Flags().IntSliceVar(&benchSizes, "sizes", []int{1000, 5000, 10000}, "Directory sizes to benchmark")
	bench.Flags().Int64Var(&benchSeed, "seed", 1, "Random seed for generated contacts")

	proto := &cobra.Command{
		Use:   "proto",
		Short: "Compare HTTP/JSON and binary TCP throughput against a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProtoBench(cmd.OutOrStdout(), protoHTTP, protoTCP, protoN)
		},
	}
	proto.Flags().StringVar(&protoHTTP, "http", "http://localhost:8080", "HTTP API base URL")
	proto.Flags().StringVar(&protoTCP, "tcp", "localhost:9090", "TCP server address")
	proto.Flags().IntVar(&protoN, "n", 5000, "Number of requests per run")

	bench.AddCommand(proto)
	rootCmd.AddCommand(bench)
}

// generateContacts returns n contacts with unique phones "13" + 9 digits.
func generateContacts(n int, seed int64) []common.Contact {
	rng := rand.New(rand.NewSource(seed))
	seen := make(map[string]struct{}, n)
	out := make([]common.Contact, 0, n)
	for len(out) < n {
		phone := fmt.Sprintf("13%09d", rng.Intn(1_000_000_000))
		if _, dup := seen[phone]; dup {
			continue
		}
		seen[phone] = struct{}{}

		name := []rune{surnames[rng.Intn(len(surnames))]}
		for i := 0; i <= rng.Intn(2); i++ {
			name = append(name, givenNames[rng.Intn(len(givenNames))])
		}
		out = append(out, common.Contact{Name: string(name), Phone: phone, Remark: "bench"})
	}
	return out
}

type benchResult struct {
	load, byName, byPhone time.Duration
	nameHits, phoneHits   int
}

func benchDirectory(contacts []common.Contact, opts core.Options) benchResult {
	var r benchResult
	d := core.NewDirectory(opts)

	start := time.Now()
	for _, c := range contacts {
		d.Add(c.Name, c.Phone, c.Remark)
	}
	r.load = time.Since(start)

	start = time.Now()
	r.nameHits = len(d.FindByNamePrefix("张"))
	r.byName = time.Since(start)

	start = time.Now()
	r.phoneHits = len(d.FindByPhonePrefix("138"))
	r.byPhone = time.Since(start)
	return r
}

func runIndexBench(out io.Writer, sizes []int, seed int64) {
	fmt.Fprintln(out, "contactdb index benchmark")
	fmt.Fprintln(out, "---------------------------------------------------")
	for _, n := range sizes {
		contacts := generateContacts(n, seed)
		indexed := benchDirectory(contacts, core.Options{NamePrefixIndex: true, PhonePrefixIndex: true})
		scanned := benchDirectory(contacts, core.Options{})

		fmt.Fprintf(out, "N=%s\n", humanize.Comma(int64(n)))
		fmt.Fprintf(out, "  %-10s %14s %14s\n", "", "prefix tree", "linear scan")
		fmt.Fprintf(out, "  %-10s %14v %14v\n", "import", indexed.load, scanned.load)
		fmt.Fprintf(out, "  %-10s %14v %14v  (%s hits)\n", "name 张", indexed.byName, scanned.byName, humanize.Comma(int64(indexed.nameHits)))
		fmt.Fprintf(out, "  %-10s %14v %14v  (%s hits)\n", "phone 138", indexed.byPhone, scanned.byPhone, humanize.Comma(int64(indexed.phoneHits)))
	}
	fmt.Fprintln(out, "---------------------------------------------------")
}

func runProtoBench(out io.Writer, httpAddr, tcpAddr string, n int) error {
	fmt.Fprintf(out, "contactdb protocol benchmark (N=%s)\n", humanize.Comma(int64(n)))
	fmt.Fprintf(out, "  HTTP=%s  TCP=%s\n", httpAddr, tcpAddr)
	fmt.Fprintln(out, "---------------------------------------------------")

	stamp := strconv.FormatInt(time.Now().UnixNano()%1_000_000, 10)

	fmt.Fprintln(out, ">> HTTP benchmark (JSON over HTTP/1.1)...")
	httpDur, err := runHTTPBench(httpAddr, n, "h"+stamp)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "   HTTP time: %v | QPS: %s\n\n", httpDur, humanize.Comma(int64(float64(n)/httpDur.Seconds())))

	fmt.Fprintln(out, ">> TCP benchmark (binary protocol)...")
	tcpDur, err := runTCPBench(tcpAddr, n, "t"+stamp)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "   TCP  time: %v | QPS: %s\n", tcpDur, humanize.Comma(int64(float64(n)/tcpDur.Seconds())))

	fmt.Fprintln(out, "---------------------------------------------------")
	fmt.Fprintf(out, "TCP is %.2fx faster than HTTP\n", httpDur.Seconds()/tcpDur.Seconds())
	return nil
}

// benchPhone keeps phones unique across runs so adds never collide.
func benchPhone(tag string, i int) string {
	return fmt.Sprintf("bench-%s-%d", tag, i)
}

func runHTTPBench(base string, n int, tag string) (time.Duration, error) {
	hc := &http.Client{Transport: &http.Transport{MaxIdleConnsPerHost: 100}}

	start := time.Now()
	for i := 0; i < n; i++ {
		body, _ := json.Marshal(common.Contact{Name: "bench", Phone: benchPhone(tag, i)})
		resp, err := hc.Post(base+"/api/contacts", "application/json", bytes.NewReader(body))
		if err != nil {
			return 0, fmt.Errorf("http request failed: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return time.Since(start), nil
}

func runTCPBench(addr string, n int, tag string) (time.Duration, error) {
	c, err := client.Dial(addr)
	if err != nil {
		return 0, fmt.Errorf("tcp connect failed: %w", err)
	}
	defer c.Close()

	start := time.Now()
	for i := 0; i < n; i++ {
		if err := c.Add("bench", benchPhone(tag, i), ""); err != nil {
			return 0, fmt.Errorf("tcp add failed: %w", err)
		}
	}
	return time.Since(start), nil
}
