package bot

const welcomeMessage = `Welcome to Twitter/X Video Downloader Bot! 🎥
Send me a Twitter/X video URL or thread URL, and I'll download and send the videos to you.
Use /help for more information.`

const helpMessage = `📖 *How to use this bot:*

1. Find a Twitter/X video or thread you want to download
2. Copy the video's URL or thread URL
3. Send the URL to this bot
4. Wait for the bot to process and send your video(s)

*Supported URLs:*
• Single video URLs
• Thread URLs (downloads all videos in the thread)

*Supported Commands:*
/start - Start the bot
/help - Show this help message
/quality - Show your current video quality
/quality\_best - Best available quality
/quality\_medium - Up to 480p
/quality\_low - Up to 240p

*Note:* Only Twitter/X video URLs are supported.`

const (
	invalidLinkMessage     = "❌ Please send a valid Twitter/X video URL."
	rateLimitedMessage     = "⏳ Too many requests, please wait a moment."
	singleProgressMessage  = "⏳ Downloading video in %s quality... Please wait."
	singleCaption          = "✅ Here's your video in %s quality!"
	singleFailedMessage    = "❌ Sorry, I couldn't download this video. Error: %v"
	threadProgressMessage  = "⏳ Processing thread... This might take a while. Using %s quality."
	threadFoundMessage     = "📥 Found %d videos. Downloading..."
	threadCaption          = "✅ Video %d/%d from thread"
	threadItemFailed       = "❌ Failed to download video %d/%d. Error: %v"
	threadEmptyMessage     = "❌ No videos found in this thread."
	threadFailedMessage    = "❌ Sorry, I couldn't process this thread. Error: %v"
	threadCompletedMessage = "✅ Thread processing completed!"

	currentQualityMessage = "Current video quality: *%s* (%s)"
	qualitySetMessage     = "✅ Video quality set to: *%s* (%s)"
	invalidQualityMessage = "❌ Invalid quality setting."
	qualitySaveFailed     = "❌ Could not save your quality setting. Please try again."

	joinChannelMessage  = "🔒 To use this bot, please join %s first:\n%s\n\nThen send your request again."
	joinChannelNoLink   = "🔒 To use this bot, please join %s first, then send your request again."
	gateFallbackMessage = "🔒 This bot is only available to subscribers of our channel. Please subscribe and try again."
)
