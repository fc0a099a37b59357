// Package quotes fetches the latest traded price for an ISIN from Tradegate.
//
// It is a cross-check collaborator: the CLI uses it to flag extracted unit
// prices that drifted from the live market, never the core. Responses go
// through a disk cache keyed by day, so repeated runs against the same
// statement do not hammer the endpoint.
package quotes

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aviadkim/holdex"
)

var quoteURL = "https://www.tradegate.de/refresh.php?isin="

// Latest returns the last traded price for the ISIN. Tradegate quotes
// everything in EUR.
func Latest(isin string) (float64, error) {
	if err := holdex.ValidateISIN(isin); err != nil {
		return math.NaN(), fmt.Errorf("refusing to query an invalid ISIN %q: %w", isin, err)
	}

	var jobj map[string]any
	if err := jwget(daily(), quoteURL+isin, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error retrieving quote for %q: %w", isin, err)
	}

	// last is the last transaction, moves slower than the bid, but the bid can be 0.
	jval, err := jsonpath.Get("$.last", jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("no 'last' in quote for %q: %w", isin, err)
	}
	if s, ok := jval.(string); ok && s == "./." {
		// tradegate shows an empty last this way, use the bid instead
		log.Println("'last' is empty, falling back to 'bid'")
		jval = jobj["bid"]
	}

	val, ok := jval.(float64)
	if !ok {
		// sometimes, this weird API returns the value as a string
		sval, ok := jval.(string)
		if !ok {
			return math.NaN(), fmt.Errorf("cannot read quote for %q: neither a float nor a string", isin)
		}
		sval = strings.ReplaceAll(sval, ",", ".")
		sval = strings.ReplaceAll(sval, " ", "")
		val, err = strconv.ParseFloat(sval, 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("cannot read quote for %q: invalid string %q: %w", isin, sval, err)
		}
	}
	if val == 0 {
		return math.NaN(), fmt.Errorf("empty bid for %s, no value to return", isin)
	}
	return val, nil
}

// Deviation compares an extracted unit price to the live quote and returns
// the relative deviation as a percent. NaN quotes propagate.
func Deviation(extracted float64, isin string) (holdex.Percent, error) {
	quote, err := Latest(isin)
	if err != nil {
		return 0, err
	}
	return holdex.Percent(math.Abs(extracted-quote) / quote * 100), nil
}

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// diskcache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", time.Now().Format("2006-01-02"), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	f.Close()
	return err
}

// daily returns a client with a cache that expires every day.
func daily() *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{http.DefaultTransport}
	return client
}

// jwget performs an HTTP GET request and unmarshals the JSON response into the provided data structure.
func jwget(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
