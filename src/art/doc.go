/*
Package art is responsible for getting cover art for albums or artist images over the
internet.

It finds images by scraping the Discogs web site. First the search page is queried
with the artist (or "artist - album") name and the catalog object ID of the result
with exactly matching title is taken. Then the images page of this object is loaded
and the URL of its first full-size image is returned.

Images themselves are downloaded with the Fetcher which could also read them from
local files, including pictures embedded in audio files.

 * Discogs: https://www.discogs.com/
*/
package art
