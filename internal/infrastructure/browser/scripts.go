package browser

const (
	readyStateScript = `document.readyState`
	outerHTMLScript  = `document.documentElement ? document.documentElement.outerHTML : ""`

	// Masks the most common automation fingerprints before any page script runs.
	stealthScript = `(() => {
  Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
  if (!window.chrome) { window.chrome = { runtime: {} }; }
  const langs = navigator.languages && navigator.languages.length ? navigator.languages : ['it-IT', 'it'];
  Object.defineProperty(navigator, 'languages', { get: () => langs });
})()`

	// Tags visible matches with a stable data-scrape-ref so that later Click and
	// Fill calls can address exactly the element that was returned.
	findElementsScript = `(selector) => {
  const visible = (el) => !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
  window.__scrapeRefSeq = window.__scrapeRefSeq || 0;
  return Array.from(document.querySelectorAll(selector)).filter(visible).map((el) => {
    let ref = el.getAttribute('data-scrape-ref');
    if (!ref) {
      window.__scrapeRefSeq += 1;
      ref = 'r' + window.__scrapeRefSeq;
      el.setAttribute('data-scrape-ref', ref);
    }
    return {
      selector: '[data-scrape-ref="' + ref + '"]',
      text: ((el.innerText || el.value || el.getAttribute('aria-label') || '') + '').trim(),
      href: el.getAttribute('href') || '',
      tag: el.tagName.toLowerCase(),
    };
  });
}`
)
