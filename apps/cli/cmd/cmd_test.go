package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/webbrowser/packages/cookiejar"
	"github.com/abdul-hamid-achik/webbrowser/packages/core/config"
	whttp "github.com/abdul-hamid-achik/webbrowser/packages/http"
	"github.com/abdul-hamid-achik/webbrowser/packages/output"
	"github.com/abdul-hamid-achik/webbrowser/packages/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags clears every flag variable so each test starts from defaults.
// Repeatable flags are set through the variables directly, since pflag
// appends to array values across parses.
func resetFlags() {
	hostFlag, portFlag, sslFlag, insecureFlag = "", 0, false, false
	userFlag, bearerFlag, digestFlag = "", "", false
	headerFlags, cookieFlags, varFlags, selectFlags = nil, nil, nil, nil
	cookieJarFlag, configFlag, envFileFlag = "", "", ""
	debugFlag, rateFlag, timeoutFlag = false, 0, ""
	outputFlag, outputFileFlag, noColorFlag, verboseFlag = "", "", false, false
	schemaFlag, expectFlags = "", nil
	queryFlags, fieldFlags = nil, nil
	dataFlag, contentTypeFlag = "", ""
	followFlag, forceInit = false, false
}

func hostArgs(t *testing.T, server *httptest.Server) []string {
	t.Helper()
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return []string{"--host", host, "--port", strconv.Itoa(port)}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func decodeJSON(t *testing.T, out string) output.JSONOutput {
	t.Helper()
	var doc output.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func TestGet_CookiesCarryAcrossPaths(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			w.Header().Set("Set-Cookie", "sid=abc")
			fmt.Fprint(w, "welcome")
		case "/account":
			c, err := r.Cookie("sid")
			if err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprint(w, "balance")
		}
	}))
	defer server.Close()

	args := append([]string{"get", "/login", "/account", "-o", "json"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	doc := decodeJSON(t, out)
	require.Len(t, doc.Exchanges, 2)
	assert.Equal(t, "balance", doc.Exchanges[1].Response.Body)
	assert.Equal(t, "abc", doc.Exchanges[1].Cookies["sid"])
	assert.Equal(t, 2, doc.Summary.Passed)
}

func TestGet_SelectFeedsLaterPaths(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/items" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[{"id":42}]}`)
			return
		}
		fmt.Fprintf(w, "path=%s q=%s", r.URL.Path, r.URL.Query().Get("page"))
	}))
	defer server.Close()

	selectFlags = []string{"id=body:items.0.id"}
	queryFlags = []string{"page={{id}}"}
	args := append([]string{"get", "/items", "/items/{{id}}", "-o", "body"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "path=/items/42 q=42")
}

func TestGet_SelectFromHTMLAndCookie(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/setup.html" {
			w.Header().Set("Set-Cookie", "SID=s1; path=/")
			fmt.Fprint(w, `<form><input name="csrf" value="t0k3n"></form>`)
			return
		}
		fmt.Fprintf(w, "token=%s", r.URL.Query().Get("token"))
	}))
	defer server.Close()

	selectFlags = []string{"csrf=html:input[name=csrf]@value", "sid=cookie:SID"}
	args := append([]string{"get", "/setup.html", "/apply.cgi?token={{csrf}}-{{sid}}", "-o", "body"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "token=t0k3n-s1")
}

func TestPost_FieldsAreFormEncoded(t *testing.T) {
	resetFlags()
	var gotType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	fieldFlags = []string{"user=admin", "pass=secret"}
	args := append([]string{"post", "/login", "-o", "body"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, "ok", out)
	assert.Equal(t, whttp.ContentTypeForm, gotType)
	assert.Equal(t, "pass=secret&user=admin", gotBody)
}

func TestPut_RawDataFromFile(t *testing.T) {
	resetFlags()
	var gotType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0644))

	args := append([]string{"put", "/blob", "-d", "@" + path, "-o", "json"}, hostArgs(t, server)...)
	_, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, whttp.ContentTypeOctetStream, gotType)
	assert.Equal(t, "payload", gotBody)
}

func TestDelete_FailureExitCode(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	args := append([]string{"delete", "/items/1", "-o", "json"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.Reported)
	assert.Equal(t, ExitRequestFailure, exitCode(err))

	doc := decodeJSON(t, out)
	require.Len(t, doc.Exchanges, 1)
	assert.Contains(t, doc.Exchanges[0].Error, "404")
	assert.Equal(t, 1, doc.Summary.Failed)
}

func TestInputs(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><form>
			<input name="user" value="admin">
			<input name="token" value="t0k">
			<input type="submit" value="Go">
		</form></body></html>`)
	}))
	defer server.Close()

	args := append([]string{"inputs", "/setup.html", "-o", "body"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, "token=t0k\nuser=admin\n", out)
}

func TestInputs_Expectations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<form><input name="user" value="admin"></form>`)
	}))
	defer server.Close()

	resetFlags()
	expectFlags = []string{"status == 200", "header Content-Type contains html"}
	out, err := execute(t, append([]string{"inputs", "/setup.html", "-o", "body"}, hostArgs(t, server)...)...)
	require.NoError(t, err)
	assert.Equal(t, "user=admin\n", out)

	resetFlags()
	expectFlags = []string{"status == 201"}
	out, err = execute(t, append([]string{"inputs", "/setup.html", "-o", "body"}, hostArgs(t, server)...)...)
	require.Error(t, err)
	assert.Equal(t, ExitExpectationFailure, exitCode(err))
	assert.NotContains(t, out, "user=admin\n")
}

func TestLink_Missing(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/other">elsewhere</a></body></html>`)
	}))
	defer server.Close()

	args := append([]string{"link", "/", "-o", "json"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.Error(t, err)
	assert.Equal(t, ExitScrapeFailure, exitCode(err))

	doc := decodeJSON(t, out)
	require.Len(t, doc.Errors, 1)
	assert.Contains(t, doc.Errors[0], "URL$1")
}

func TestLink_Follow(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/next" {
			fmt.Fprint(w, "arrived")
			return
		}
		fmt.Fprint(w, `<html><body><a name="URL$1" href="http://192.168.1.1/next?x=1">go</a></body></html>`)
	}))
	defer server.Close()

	args := append([]string{"link", "/", "--follow", "-o", "body"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "URL$1=/next")
	assert.Contains(t, out, "arrived")
}

func TestDigestRetry(t *testing.T) {
	resetFlags()
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") {
			w.Header().Set("WWW-Authenticate", `Digest realm="router", nonce="abc123", qop="auth"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		p := whttp.ParseWWWAuthenticate(auth)
		expected := (&whttp.DigestChallenge{
			Username: "admin", Password: "s3cret", Realm: "router", Nonce: "abc123",
			URI: r.URL.RequestURI(), Qop: p["qop"], Nc: p["nc"], Cnonce: p["cnonce"], Method: r.Method,
		}).Response()
		if p["uri"] != r.URL.RequestURI() || p["response"] != expected {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprintf(w, "uri=%s response=%s", p["uri"], p["response"])
			return
		}
		fmt.Fprint(w, "inside")
	}))
	defer server.Close()

	tests := []struct {
		name  string
		query []string
	}{
		{name: "plain path"},
		{name: "with query values", query: []string{"page=2", "sort=name asc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			attempts = 0
			queryFlags = tt.query

			args := append([]string{"get", "/admin", "--digest", "-u", "admin:s3cret", "-o", "body"}, hostArgs(t, server)...)
			out, err := execute(t, args...)
			require.NoError(t, err)

			assert.Equal(t, "inside", out)
			assert.Equal(t, 2, attempts)
		})
	}
}

func TestCookieJarPersisted(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "session=xyz")
	}))
	defer server.Close()

	jar := filepath.Join(t.TempDir(), "jar.yaml")
	args := append([]string{"get", "/", "--cookie-jar", jar, "-o", "json"}, hostArgs(t, server)...)
	_, err := execute(t, args...)
	require.NoError(t, err)

	cookies, err := cookiejar.Load(jar)
	require.NoError(t, err)
	assert.Equal(t, "xyz", cookies["session"])
}

func TestSchemaFailureExitCode(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"not-a-number"}`)
	}))
	defer server.Close()

	schemaPath := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type":"object","properties":{"id":{"type":"integer"}}}`), 0644))

	args := append([]string{"get", "/item", "--schema", schemaPath, "-o", "json"}, hostArgs(t, server)...)
	_, err := execute(t, args...)
	require.Error(t, err)

	var validationErr *schema.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, ExitSchemaError, exitCode(err))
}

func TestExpectations(t *testing.T) {
	resetFlags()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[1,2,3]}`)
	}))
	defer server.Close()

	expectFlags = []string{"status == 200", "body.items length 3"}
	args := append([]string{"get", "/items", "-o", "json"}, hostArgs(t, server)...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	doc := decodeJSON(t, out)
	require.Len(t, doc.Exchanges[0].Checks, 2)

	expectFlags = []string{"body.items length 4"}
	_, err = execute(t, args...)
	require.Error(t, err)
	assert.Equal(t, ExitExpectationFailure, exitCode(err))

	expectFlags = []string{"status =~ 200"}
	_, err = execute(t, args...)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestMissingHost(t *testing.T) {
	resetFlags()
	t.Chdir(t.TempDir())

	_, err := execute(t, "get", "/")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestConnectFailure(t *testing.T) {
	resetFlags()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	out, err := execute(t, "get", "/", "--host", "127.0.0.1", "--port", strconv.Itoa(port), "-o", "json")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, exitCode(err))

	doc := decodeJSON(t, out)
	assert.Len(t, doc.Errors, 1)
}

func TestInit(t *testing.T) {
	resetFlags()
	t.Chdir(t.TempDir())

	out, err := execute(t, "init", "--host", "192.168.1.1", "--ssl", "-k", "-u", "admin:ignored")
	require.NoError(t, err)
	assert.Contains(t, out, ".webbrowser.yaml")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.1", cfg.Host)
	assert.True(t, cfg.GetUseSSL())
	assert.False(t, cfg.GetVerifyCert())
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "${WEBBROWSER_PASSWORD}", cfg.Password)

	_, err = execute(t, "init")
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestVersion(t *testing.T) {
	resetFlags()
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "webbrowser "), out)
	assert.Contains(t, out, "built "+buildTime)
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			resetFlags()
			out, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "webbrowser")
		})
	}

	resetFlags()
	_, err := execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"X-Token: abc", "Accept:text/html"}, ":")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-Token": "abc", "Accept": "text/html"}, got)

	got, err = parsePairs(nil, "=")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parsePairs([]string{"novalue"}, "=")
	assert.Error(t, err)
	_, err = parsePairs([]string{"=value"}, "=")
	assert.Error(t, err)
}

func TestBodyOptions(t *testing.T) {
	resetFlags()
	dataFlag = "x"
	fieldFlags = []string{"a=1"}
	_, err := bodyOptions(strings.NewReader(""))
	assert.Error(t, err)

	resetFlags()
	dataFlag = "@-"
	opts, err := bodyOptions(strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	data, err := readData("@-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", data)

	_, err = readData("@/nonexistent/file", nil)
	assert.Error(t, err)
}

func TestAuthorization(t *testing.T) {
	assert.Equal(t, "Bearer tok", authorization(&config.Config{Token: "tok", Username: "u"}, false))
	assert.Equal(t, whttp.BasicAuthorization("u", "p"), authorization(&config.Config{Username: "u", Password: "p"}, false))
	assert.Empty(t, authorization(&config.Config{Username: "u", Password: "p"}, true))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitRequestFailure, exitCode(&whttp.StatusError{StatusCode: 500}))
	assert.Equal(t, ExitSchemaError, exitCode(&schema.ValidationError{Errors: []string{"bad"}}))
	assert.Equal(t, ExitUsageError, exitCode(whttp.ErrFormContentType))
	assert.Equal(t, ExitNetworkError, exitCode(errors.New("connection refused")))
	assert.Equal(t, ExitConfigError, exitCode(withCode(ExitConfigError, errors.New("bad config"))))
	assert.Equal(t, ExitScrapeFailure, exitCode(&ExitError{Code: ExitScrapeFailure, Err: errors.New("no link"), Reported: true}))
}
