package gradescope

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	BaseURL   = "https://www.gradescope.com"
	UserAgent = "gradescope-sync/1.0 (github.com/pfrederiksen/gradescope-sync)"
	Timeout   = 30 * time.Second
)

// Client is an authenticated Gradescope session. Login must be called before
// fetching courses or assignments.
type Client struct {
	client   *http.Client
	baseURL  string
	email    string
	password string
}

// NewClient creates a new Gradescope client with a cookie-backed session
func NewClient(email, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		client: &http.Client{
			Timeout: Timeout,
			Jar:     jar,
		},
		baseURL:  BaseURL,
		email:    email,
		password: password,
	}, nil
}

// Login performs the form login against Gradescope. The login page embeds a
// CSRF token that must be posted back with the credentials; a page without
// one is an unrecoverable precondition failure.
func (c *Client) Login() error {
	doc, err := c.getDocument("/login")
	if err != nil {
		return fmt.Errorf("loading login page: %w", err)
	}

	token, ok := doc.Find(`input[name="authenticity_token"]`).First().Attr("value")
	if !ok || token == "" {
		return fmt.Errorf("could not find CSRF token on login page")
	}

	form := url.Values{}
	form.Set("authenticity_token", token)
	form.Set("session[email]", c.email)
	form.Set("session[password]", c.password)
	form.Set("session[remember_me]", "0")
	form.Set("commit", "Log In")
	form.Set("session[remember_me_sso]", "0")

	req, err := http.NewRequest("POST", c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting login form: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading login response: %w", err)
	}

	if strings.Contains(string(body), "Invalid email/password combination") {
		return fmt.Errorf("invalid credentials")
	}

	// A successful login redirects to the account page, which lists courses
	if !strings.Contains(resp.Request.URL.Path, "/account") && !strings.Contains(string(body), "/courses") {
		return fmt.Errorf("login failed: unexpected redirect to %s", resp.Request.URL)
	}

	return nil
}

// FetchCourses fetches the account page and extracts all course records
func (c *Client) FetchCourses() ([]Course, error) {
	doc, err := c.getDocument("/account")
	if err != nil {
		return nil, err
	}
	return ExtractCourses(doc), nil
}

// FetchAssignments fetches a course page and extracts all assignment records
func (c *Client) FetchAssignments(courseID string) ([]Assignment, error) {
	doc, err := c.getDocument("/courses/" + courseID)
	if err != nil {
		return nil, err
	}
	return ExtractAssignments(doc, courseID), nil
}

// getDocument fetches a path within the session and parses it into a
// queryable document
func (c *Client) getDocument(path string) (*goquery.Document, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, path)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}
